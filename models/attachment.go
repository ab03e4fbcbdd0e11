package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

// Attachment is a file associated with a record. The raw bytes are embedded
// as a base64 data URI so the record stays self-contained and readable
// without a separate blob fetch. URL and RemotePath are filled in after the
// blob has been uploaded to the remote store.
type Attachment struct {
	FileName string `json:"fileName"`
	// DataURI holds the file content as `data:<mime>;base64,<payload>`.
	DataURI string `json:"dataUri,omitempty"`
	// URL is the durable reference returned by the remote blob store.
	URL string `json:"url,omitempty"`
	// RemotePath is the blob-store key the file was uploaded under.
	RemotePath string `json:"remotePath,omitempty"`
}

// NewAttachment embeds data as a data URI under the given content type.
func NewAttachment(fileName, contentType string, data []byte) *Attachment {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Attachment{
		FileName: fileName,
		DataURI:  fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
	}
}

// Bytes decodes the embedded data URI and returns the raw content and its
// content type.
func (a *Attachment) Bytes() ([]byte, string, error) {
	rest, ok := strings.CutPrefix(a.DataURI, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	contentType, _ := strings.CutSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data uri payload: %w", err)
	}
	return data, contentType, nil
}

// PendingUpload reports whether the attachment still has local bytes that
// were never uploaded to the remote blob store.
func (a *Attachment) PendingUpload() bool {
	return a != nil && a.DataURI != "" && a.RemotePath == ""
}
