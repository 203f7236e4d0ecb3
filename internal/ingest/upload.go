package ingest

import (
	"path/filepath"
	"strings"

	"github.com/sultanMIB/pdf-ui/internal/common"
)

// Upload is one file received from a client.
type Upload struct {
	Present  bool
	Filename string
	Data     []byte
}

// ValidateUpload runs the checks that must pass before analysis, in order:
// a file part exists, it has a name, the name ends in .pdf, it has content.
func ValidateUpload(u Upload) error {
	switch {
	case !u.Present:
		return common.NewAppError(common.CodeNoFile, "no file part in request", common.ErrInvalidInput)
	case strings.TrimSpace(u.Filename) == "":
		return common.NewAppError(common.CodeNoFilename, "no file selected", common.ErrInvalidInput)
	case !AllowedExt(filepath.Ext(u.Filename)):
		return common.NewAppError(common.CodeNotPDF, "file must be a PDF", common.ErrInvalidInput)
	case len(u.Data) == 0:
		return common.NewAppError(common.CodeEmptyFile, "file is empty", common.ErrInvalidInput)
	}
	return nil
}
