package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
)

// FetchChart downloads a generated chart image and stores it in the chart
// directory. It returns the absolute path of the stored file. Failures are
// ChartErrors; no retry is attempted.
func (c *Client) FetchChart(ctx context.Context, imageURL string) (string, error) {
	dir := c.chartDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apierrors.NewChartError(imageURL, "failed to create chart directory: "+err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", apierrors.NewChartError(imageURL, "failed to create request: "+err.Error())
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apierrors.NewChartError(imageURL, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apierrors.NewChartError(imageURL, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "image") &&
		!strings.Contains(contentType, "octet-stream") {
		return "", apierrors.NewChartError(imageURL, "response is not an image: "+contentType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierrors.NewChartError(imageURL, "failed to read response: "+err.Error())
	}

	destPath := filepath.Join(dir, chartFilename(imageURL, contentType))
	if err := os.WriteFile(destPath, body, 0o644); err != nil {
		return "", apierrors.NewChartError(imageURL, "failed to save file: "+err.Error())
	}

	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return destPath, nil
	}
	return absPath, nil
}

// chartFilename derives a local filename from the chart URL, falling back
// to a timestamped name when the URL has no usable basename.
func chartFilename(url, contentType string) string {
	ext := ".png"
	switch {
	case strings.Contains(contentType, "jpeg"):
		ext = ".jpg"
	case strings.Contains(contentType, "svg"):
		ext = ".svg"
	case strings.Contains(contentType, "webp"):
		ext = ".webp"
	}

	trimmed := strings.Split(url, "?")[0]
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 {
		last := parts[len(parts)-1]
		if matched, _ := regexp.MatchString(`\.\w+$`, last); matched {
			return sanitizeFilename(last)
		}
	}

	return fmt.Sprintf("chart_%s%s", time.Now().Format("20060102_150405"), ext)
}

// sanitizeFilename removes characters not allowed in filenames.
func sanitizeFilename(name string) string {
	reg := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	return strings.TrimSpace(reg.ReplaceAllString(name, "_"))
}
