package expense

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/spendeka/spendeka-api/internal/scanning"
)

// maxFormMemory bounds how much of a multipart body is held in memory; the
// rest spills to disk. Uploads larger than the bill limit are still accepted
// here so the size rejection can clean up the asset itself.
const maxFormMemory = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps a classified error to a status and a single JSON message.
// Raw upstream errors stay in the logs; only the classified message goes out.
func writeError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	if kind == KindInternal {
		slog.Error("Unclassified request failure", "error", err)
	}
	writeJSON(w, kind.HTTPStatus(), map[string]string{"error": CallerMessage(err)})
}

// handleRoot answers so hitting the base URL doesn't 404
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Spendeka API running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleParseText handles the text -> transaction flow
func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, invalidInput("Invalid request body"))
		return
	}

	transaction, err := s.service.ParseText(r.Context(), req.Text, scanning.ParseLanguage(req.Language))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transaction)
}

// handleScanBill handles the bill image -> OCR -> transaction flow
func (s *Server) handleScanBill(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.uploadedAsset(w, r, "No bill image uploaded")
	if !ok {
		return
	}

	result, err := s.service.ScanBill(r.Context(), asset, scanning.ParseLanguage(r.FormValue("language")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleImageCaption handles the item photo -> caption flow
func (s *Server) handleImageCaption(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.uploadedAsset(w, r, "No image uploaded")
	if !ok {
		return
	}

	result, err := s.service.CaptionImage(r.Context(), asset, scanning.ParseLanguage(r.FormValue("language")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// uploadedAsset pulls the "file" part out of a multipart request and spools
// it into the temp dir. On failure it writes the error response and returns
// ok=false.
func (s *Server) uploadedAsset(w http.ResponseWriter, r *http.Request, missingMsg string) (*Asset, bool) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, invalidInput(missingMsg))
		return nil, false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, invalidInput(missingMsg))
		return nil, false
	}
	defer f.Close()

	asset, err := SaveUpload(s.tmpDir, f, header)
	if err != nil {
		slog.Error("Error spooling upload", "filename", header.Filename, "error", err)
		writeError(w, internal("Failed to store uploaded file", err))
		return nil, false
	}

	return asset, true
}
