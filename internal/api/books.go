package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
)

// Load asks the backend to ingest its books folder. A backend-reported
// failure is not an error here: it comes back as a result with Error set.
func (c *Client) Load(ctx context.Context) (*models.BookLoadResult, error) {
	resp, err := c.do(ctx, http.MethodPost, models.EndpointLoad, "load books", nil, models.DefaultHeaders())
	if err != nil {
		return nil, err
	}

	parsed, perr := parseObject(resp.body)
	if perr != nil {
		if !resp.ok() {
			return nil, statusError(resp, models.EndpointLoad, "load books")
		}
		return nil, perr
	}

	result := &models.BookLoadResult{
		TotalFilesFound: int(parsed.Get(PathTotalFilesFound).Int()),
		ChunksCreated:   int(parsed.Get(PathChunksCreated).Int()),
		ChunksInserted:  int(parsed.Get(PathChunksInserted).Int()),
		BooksLoaded:     stringArray(parsed.Get(PathBooksLoaded)),
		BooksSkipped:    stringArray(parsed.Get(PathBooksSkipped)),
	}

	// A failed load may still carry the books stored before the failure.
	if msg := parsed.Get(PathError); msg.Exists() && msg.String() != "" {
		result.Error = msg.String()
		return result, nil
	}
	if !resp.ok() {
		return nil, statusError(resp, models.EndpointLoad, "load books")
	}

	return result, nil
}

// Ask sends a question and returns the backend's answer
func (c *Client) Ask(ctx context.Context, question string) (*models.AskResponse, error) {
	if question == "" {
		return nil, apierrors.ErrEmptyQuestion
	}

	payload, err := json.Marshal(models.AskRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, models.EndpointAsk, "ask question", bytes.NewReader(payload), models.JSONHeaders())
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(resp, models.EndpointAsk, "ask question")
	}

	parsed, err := parseObject(resp.body)
	if err != nil {
		return nil, err
	}

	answer := parsed.Get(PathAnswer)
	if answer.Type != gjson.String {
		return nil, apierrors.NewParseError("no answer in response", PathAnswer)
	}

	return &models.AskResponse{Answer: answer.String()}, nil
}

// Books lists the sources the backend has already stored
func (c *Client) Books(ctx context.Context) (*models.BookListResult, error) {
	resp, err := c.do(ctx, http.MethodGet, models.EndpointBooks, "list books", nil, models.DefaultHeaders())
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(resp, models.EndpointBooks, "list books")
	}

	parsed, err := parseObject(resp.body)
	if err != nil {
		return nil, err
	}

	books := parsed.Get(PathBooks)
	if books.Exists() && books.Type != gjson.Null && !books.IsArray() {
		return nil, apierrors.NewParseError("books is not a list", PathBooks)
	}

	return &models.BookListResult{Books: stringArray(books)}, nil
}

// parseObject validates that body is a single JSON object
func parseObject(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, apierrors.NewParseError("invalid JSON in response", "")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return gjson.Result{}, apierrors.NewParseError("response is not a JSON object", "")
	}
	return parsed, nil
}

// stringArray collects the string elements of a JSON array
func stringArray(result gjson.Result) []string {
	if !result.IsArray() {
		return nil
	}
	values := []string{}
	result.ForEach(func(_, v gjson.Result) bool {
		values = append(values, v.String())
		return true
	})
	return values
}
