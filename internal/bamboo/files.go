package bamboo

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// File is a downloaded resume artifact: raw bytes plus the content type the
// file storage declared for it.
type File struct {
	Data        []byte
	ContentType string
}

// DownloadFile fetches the binary artifact for the given file id.
func (c *Client) DownloadFile(ctx context.Context, fileID int) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.FilesURL, fileID), nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %d: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %d: bad status: %s", fileID, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download file %d: %w", fileID, err)
	}

	contentType := resp.Header.Get("Content-Type")
	c.logger.Debug("downloaded file",
		zap.Int("file_id", fileID),
		zap.Int("bytes", len(data)),
		zap.String("content_type", contentType),
	)

	return &File{Data: data, ContentType: contentType}, nil
}
