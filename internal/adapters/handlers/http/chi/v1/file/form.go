package file

import (
	"fmt"
	"io"
	"mime/multipart"
	"restaurant-menu/internal/core/domain"
)

// ReadFormFiles loads the content of every file header of a form field
func ReadFormFiles(headers []*multipart.FileHeader) ([]domain.UploadFile, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	files := make([]domain.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := readFormFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readFormFile(header *multipart.FileHeader) (domain.UploadFile, error) {
	f, err := header.Open()
	if err != nil {
		return domain.UploadFile{}, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.UploadFile{}, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	return domain.UploadFile{
		Bytes:        content,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
	}, nil
}
