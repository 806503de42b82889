package api

import (
	"errors"
	"io"
	"net/http"

	service "github.com/okian/heist/internal/app"
)

const uploadField = "file"

// handleDetectGesture handles POST /detect-gesture requests. The frame is
// read from the multipart field "file".
func (s *Server) handleDetectGesture(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_detect_gesture"

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	image, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := s.deps.DetectGestures(r.Context(), image)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, service.ErrEmptyImage):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, service.ErrDetectTimeout):
		writeError(w, http.StatusGatewayTimeout, "timeout", WrapKind(op, ErrTimeout, err))
	case errors.Is(err, service.ErrDetector):
		s.logger.Warn(r.Context(), "gesture detection failed")
		writeError(w, http.StatusBadGateway, "detector_error", WrapKind(op, ErrDetector, err))
	default:
		s.serverError(w, r, Wrap(op, err))
	}
}

func readUpload(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
