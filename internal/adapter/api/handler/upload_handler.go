package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"foodshare/internal/usecase"
	"foodshare/pkg/errors"
	"foodshare/pkg/logger"
	"foodshare/pkg/response"
)

type UploadHandler struct {
	photoUseCase *usecase.PhotoUseCase
}

func NewUploadHandler(photoUseCase *usecase.PhotoUseCase) *UploadHandler {
	return &UploadHandler{
		photoUseCase: photoUseCase,
	}
}

// UploadListingPhoto takes a multipart "photo" field and answers with the URL
// to send back as a listing's photo_ref.
func (h *UploadHandler) UploadListingPhoto(c echo.Context) error {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid photo", err))
	}

	logger.Debug("Received photo: %s, size: %d bytes", fileHeader.Filename, fileHeader.Size)

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Unable to read photo", err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		head := make([]byte, 512)
		n, _ := io.ReadFull(file, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return response.Error(c, errors.Internal("Unable to read photo", err))
		}
	}

	url, err := h.photoUseCase.UploadListingPhoto(c.Request().Context(), callerID(c), file, contentType, fileHeader.Size)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"photo_ref": url,
	})
}
