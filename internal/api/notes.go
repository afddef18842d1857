package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Note struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Subject       string    `json:"subject"`
	Department    string    `json:"department"`
	Semester      int       `json:"semester"`
	Description   string    `json:"description"`
	IsPremium     bool      `json:"isPremium"`
	Price         float64   `json:"price"`
	FileURL       string    `json:"fileUrl"`
	FileName      string    `json:"fileName"`
	Downloads     int       `json:"downloads"`
	PaidDownloads int       `json:"paidDownloads"`
	CreatedAt     time.Time `json:"createdAt"`
}

type NoteFilters struct {
	Department string
	Semester   int
	Subject    string
}

func (f NoteFilters) values() url.Values {
	query := url.Values{}
	if f.Department != "" {
		query.Set("department", f.Department)
	}
	if f.Semester > 0 {
		query.Set("semester", strconv.Itoa(f.Semester))
	}
	if f.Subject != "" {
		query.Set("subject", f.Subject)
	}
	return query
}

func (c *Client) ListNotes(ctx context.Context, filters NoteFilters) ([]Note, error) {
	var out struct {
		Notes []Note `json:"notes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/notes", filters.values(), nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

type UploadNoteRequest struct {
	Title       string
	Subject     string
	Department  string
	Semester    int
	Description string
	IsPremium   bool
	Price       float64
	FileName    string
	File        io.Reader
}

// UploadNote sends the note metadata and file as multipart form data, the
// only non-JSON request in the contract.
func (c *Client) UploadNote(ctx context.Context, req UploadNoteRequest) (Note, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		err := writeNoteForm(form, req)
		if cerr := form.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/notes/upload", nil, pr)
	if err != nil {
		return Note{}, err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	var out Note
	if err := c.send(httpReq, &out); err != nil {
		return Note{}, err
	}
	return out, nil
}

func writeNoteForm(form *multipart.Writer, req UploadNoteRequest) error {
	fields := map[string]string{
		"title":       req.Title,
		"subject":     req.Subject,
		"department":  req.Department,
		"semester":    strconv.Itoa(req.Semester),
		"description": req.Description,
		"isPremium":   strconv.FormatBool(req.IsPremium),
		"price":       strconv.FormatFloat(req.Price, 'f', -1, 64),
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("file", req.FileName)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, req.File)
	return err
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/notes/"+noteID, nil, nil, nil)
}

// RecordDownload tells the backend a download happened; the file itself is
// fetched from the note's fileUrl.
func (c *Client) RecordDownload(ctx context.Context, noteID string) error {
	return c.doJSON(ctx, http.MethodPut, "/notes/"+noteID+"/download", nil, nil, nil)
}
