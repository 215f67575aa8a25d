package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
)

// DefaultAnswerText is used when a successful response carries no text.
const DefaultAnswerText = "Analysis complete."

// AnalysisResult is the parsed outcome of one analysis request.
type AnalysisResult struct {
	// Text is the agent's textual answer, never empty on success.
	Text string
	// ImageURL is the absolute URL of a generated chart, empty when the
	// answer is text-only.
	ImageURL string
}

// Analyze sends filePath and question to the backend as one multipart
// request and parses the outcome. An `error` field in a 2xx body is
// returned as an ApplicationError; non-2xx statuses and network failures
// become TransportErrors.
func (c *Client) Analyze(ctx context.Context, filePath, question string) (*AnalysisResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Build the multipart body: `file` (binary) and `question` (text)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.WriteField("question", question); err != nil {
		return nil, fmt.Errorf("failed to write question field: %w", err)
	}
	_ = writer.Close()

	endpoint := c.baseURL + "/chat/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewTransportError(0, endpoint, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewTransportError(resp.StatusCode, endpoint, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A JSON error body may still carry a usable message
		if msg := gjson.GetBytes(respBody, "error"); msg.Exists() && msg.String() != "" {
			return nil, apierrors.NewTransportError(resp.StatusCode, endpoint, msg.String())
		}
		return nil, apierrors.NewTransportError(resp.StatusCode, endpoint, "")
	}

	// Application-level failure inside a successful transport exchange
	if msg := gjson.GetBytes(respBody, "error"); msg.Exists() && msg.String() != "" {
		return nil, apierrors.NewApplicationError(msg.String())
	}

	result := &AnalysisResult{
		Text: gjson.GetBytes(respBody, "response").String(),
	}
	if result.Text == "" {
		result.Text = DefaultAnswerText
	}

	if ref := gjson.GetBytes(respBody, "image_url").String(); ref != "" {
		result.ImageURL = c.ResolveURL(ref)
	}

	return result, nil
}
