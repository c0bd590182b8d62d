package expense

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/spendeka/spendeka-api/internal/scanning"
)

var _ = Describe("Server", func() {
	var (
		generator   *mockGenerator
		engine      *mockEngine
		service     *Service
		server      *Server
		tmpDir      string
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		generator = newMockGenerator()
		engine = &mockEngine{text: "PHO 24\nTOTAL 60000"}
		timeSrc := &mockTimeSource{now: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(generator, engine, timeSrc)

		var err error
		tmpDir, err = os.MkdirTemp("", "server-test")
		Expect(err).NotTo(HaveOccurred())

		server = NewServerWithMux(service, tmpDir, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
		os.RemoveAll(tmpDir)
	})

	postJSON := func(path string, body string) *http.Response {
		resp, err := http.Post(ghttpServer.URL()+path, "application/json", bytes.NewBufferString(body))
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decodeBody := func(resp *http.Response) map[string]any {
		defer resp.Body.Close()
		var decoded map[string]any
		Expect(json.NewDecoder(resp.Body).Decode(&decoded)).To(Succeed())
		return decoded
	}

	postMultipart := func(path string, withFile bool, language string) *http.Response {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		if withFile {
			part, err := writer.CreateFormFile("file", "bill.png")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(testPNGBytes())
			Expect(err).NotTo(HaveOccurred())
		}
		if language != "" {
			Expect(writer.WriteField("language", language)).To(Succeed())
		}
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghttpServer.URL()+path, writer.FormDataContentType(), &body)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("GET /health", func() {
		It("returns ok", func() {
			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeBody(resp)).To(HaveKeyWithValue("ok", true))
		})
	})

	Describe("POST /parse-text", func() {
		When("the request is valid", func() {
			It("returns the parsed transaction", func() {
				resp := postJSON("/parse-text", `{"text": "Bought lunch for 12", "language": "eng"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body := decodeBody(resp)
				Expect(body).To(HaveKeyWithValue("caption", "Lunch"))
				Expect(body).To(HaveKeyWithValue("amount", 12.0))
				Expect(body).To(HaveKeyWithValue("type", "spent"))
				Expect(body).To(HaveKeyWithValue("createdAt", "2024-01-02T10:00:00.000Z"))
			})
		})

		When("the text is missing", func() {
			It("returns 400 with a single error message", func() {
				resp := postJSON("/parse-text", `{"language": "eng"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(decodeBody(resp)).To(HaveKey("error"))
			})

			It("never calls the generator", func() {
				resp := postJSON("/parse-text", `{"text": "   "}`)
				resp.Body.Close()
				Expect(generator.parseCalls).To(BeZero())
			})
		})

		When("the body is not JSON", func() {
			It("returns 400", func() {
				resp := postJSON("/parse-text", `not json`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("the language is unrecognized", func() {
			It("falls back to English", func() {
				resp := postJSON("/parse-text", `{"text": "Bought lunch", "language": "de"}`)
				resp.Body.Close()
				Expect(generator.lastLang).To(Equal(scanning.LanguageEnglish))
			})
		})

		When("the generator fails", func() {
			BeforeEach(func() {
				generator.parseErr = errors.New("backend down")
			})

			It("returns 502 with the classified message only", func() {
				resp := postJSON("/parse-text", `{"text": "Bought lunch"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

				body := decodeBody(resp)
				Expect(body["error"]).NotTo(ContainSubstring("backend down"))
			})
		})
	})

	Describe("POST /scan-bill", func() {
		When("a bill image is uploaded", func() {
			It("returns the raw text and the parsed transaction", func() {
				resp := postMultipart("/scan-bill", true, "vie")
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body := decodeBody(resp)
				Expect(body).To(HaveKeyWithValue("rawText", "PHO 24\nTOTAL 60000"))
				Expect(body).To(HaveKey("parsed"))
			})

			It("passes the language to the text path", func() {
				resp := postMultipart("/scan-bill", true, "vie")
				resp.Body.Close()
				Expect(generator.lastLang).To(Equal(scanning.LanguageVietnamese))
			})

			It("leaves no asset behind in the temp dir", func() {
				resp := postMultipart("/scan-bill", true, "")
				resp.Body.Close()
				entries, err := os.ReadDir(tmpDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(BeEmpty())
			})
		})

		When("no file is uploaded", func() {
			It("returns 400", func() {
				resp := postMultipart("/scan-bill", false, "")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(decodeBody(resp)).To(HaveKeyWithValue("error", "No bill image uploaded"))
			})
		})

		When("the OCR output is empty", func() {
			BeforeEach(func() {
				engine.text = ""
			})

			It("returns 422 and removes the asset", func() {
				resp := postMultipart("/scan-bill", true, "")
				Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
				resp.Body.Close()

				entries, err := os.ReadDir(tmpDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(BeEmpty())
			})
		})
	})

	Describe("POST /image-caption", func() {
		When("an image is uploaded", func() {
			It("returns the caption result", func() {
				resp := postMultipart("/image-caption", true, "eng")
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body := decodeBody(resp)
				Expect(body).To(HaveKeyWithValue("caption", "Snack run"))
				Expect(body["items"]).To(ConsistOf("milk tea", "hamburger"))
			})

			It("leaves no asset behind in the temp dir", func() {
				resp := postMultipart("/image-caption", true, "")
				resp.Body.Close()
				entries, err := os.ReadDir(tmpDir)
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(BeEmpty())
			})
		})

		When("no file is uploaded", func() {
			It("returns 400", func() {
				resp := postMultipart("/image-caption", false, "")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(decodeBody(resp)).To(HaveKeyWithValue("error", "No image uploaded"))
			})
		})
	})
})

// testPNGBytes returns a small decodable PNG for upload bodies.
func testPNGBytes() []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}
