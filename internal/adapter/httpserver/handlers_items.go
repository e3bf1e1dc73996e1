package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	apperrors "github.com/csentein/P6-Sentein-Clement/internal/platform/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	itemFormField  = "item"
	imageFormField = "image"
)

// itemPayload is the client's view of an item. Tallies, ids and timestamps
// are never read from it.
type itemPayload struct {
	UserID string `json:"userId"`
	domain.ItemDetails
}

type itemResponse struct {
	Message string       `json:"message"`
	Item    *domain.Item `json:"item"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func parseItemID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid item id").WithField("id", raw)
	}
	return id, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// readMultipartItem decodes the JSON `item` field and the optional `image`
// file. The caller closes the returned file when it is non-nil.
func readMultipartItem(c echo.Context) (itemPayload, *domain.Upload, multipart.File, error) {
	var payload itemPayload
	raw := c.FormValue(itemFormField)
	if raw == "" {
		return payload, nil, nil, apperrors.ValidationError("missing item field")
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, nil, nil, apperrors.ValidationError("item field is not valid JSON")
	}

	header, err := c.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return payload, nil, nil, nil
	}
	if err != nil {
		return payload, nil, nil, apperrors.ValidationError("invalid image upload")
	}

	file, err := header.Open()
	if err != nil {
		return payload, nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	upload := &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Body:        file,
	}
	return payload, upload, file, nil
}

func (s *Server) handleListItems(c echo.Context) error {
	items, err := s.app.ListItems(c.Request().Context())
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []*domain.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetItem(c echo.Context) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return err
	}

	item, err := s.app.GetItem(c.Request().Context(), itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleCreateItem(c echo.Context) error {
	if !isMultipart(c) {
		return apperrors.ValidationError("expected multipart form with item and image fields")
	}

	payload, upload, file, err := readMultipartItem(c)
	if err != nil {
		return err
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	if err := s.checkClaim(c, payload.UserID); err != nil {
		return err
	}

	item, err := s.app.CreateItem(c.Request().Context(), subjectFrom(c), payload.ItemDetails, upload, s.getBaseURL(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, itemResponse{Message: "item saved", Item: item})
}

func (s *Server) handleUpdateItem(c echo.Context) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return err
	}

	var payload itemPayload
	var upload *domain.Upload
	if isMultipart(c) {
		var file multipart.File
		payload, upload, file, err = readMultipartItem(c)
		if err != nil {
			return err
		}
		if file != nil {
			defer func() { _ = file.Close() }()
		}
	} else if err := c.Bind(&payload); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.checkClaim(c, payload.UserID); err != nil {
		return err
	}

	item, err := s.app.UpdateItem(c.Request().Context(), subjectFrom(c), itemID, payload.ItemDetails, upload, s.getBaseURL(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemResponse{Message: "item updated", Item: item})
}

func (s *Server) handleDeleteItem(c echo.Context) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return err
	}

	if err := s.app.DeleteItem(c.Request().Context(), subjectFrom(c), itemID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "item deleted"})
}
