package handler

import (
	"net/http"

	"github.com/pkordes/wanderlogue/backend/internal/auth"
	"github.com/pkordes/wanderlogue/backend/internal/service"
)

// PresignUpload handles POST /api/uploads/presign.
// The client PUTs the file to upload.uploadUrl, then stores upload.fileUrl and
// upload.publicId on a trip media item.
func (s *Server) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var body service.UploadRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	upload, err := s.media.PresignUpload(r.Context(), auth.UserIDFrom(r.Context()), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"upload": upload})
}
