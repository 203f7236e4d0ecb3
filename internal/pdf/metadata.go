package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/sultanMIB/pdf-ui/internal/common"
	"github.com/sultanMIB/pdf-ui/internal/entity"
)

var disableConfigDir sync.Once

// FileSizeKB formats a byte length as kilobytes with two decimals.
func FileSizeKB(n int) string {
	return fmt.Sprintf("%.2f", float64(n)/1024)
}

// ReadMetadata returns the page count and info dictionary fields. Missing
// fields are left empty; a missing info dictionary is ErrNoMetadata.
func (e *Extractor) ReadMetadata(ctx context.Context, data []byte) (md entity.Metadata, err error) {
	md.FileSizeKB = FileSizeKB(len(data))
	if err := ctx.Err(); err != nil {
		return md, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = common.RecoverError(common.ErrMalformedDocument, r)
		}
	}()

	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return md, fmt.Errorf("%w: pdfcpu read: %w", common.ErrMalformedDocument, err)
	}

	md.PageCount = pctx.PageCount
	if pctx.XRefTable == nil || pctx.XRefTable.Info == nil {
		return md, common.ErrNoMetadata
	}
	md.Title = strings.TrimSpace(pctx.XRefTable.Title)
	md.Author = strings.TrimSpace(pctx.XRefTable.Author)
	md.CreationDate = strings.TrimSpace(pctx.XRefTable.CreationDate)
	if md.CreationDate == "" {
		// pdfcpu drops dates it cannot parse; keep the raw value.
		md.CreationDate = rawInfoString(pctx.XRefTable, "CreationDate")
	}

	common.LoggerFrom(ctx, e.logger).Debug("pdf.metadata.read", "pages", md.PageCount, "size_kb", md.FileSizeKB)
	return md, nil
}

func rawInfoString(xrt *model.XRefTable, key string) string {
	d, err := xrt.DereferenceDict(*xrt.Info)
	if err != nil || d == nil {
		return ""
	}
	o, ok := d.Find(key)
	if !ok {
		return ""
	}
	if o, err = xrt.Dereference(o); err != nil || o == nil {
		return ""
	}
	v, err := types.StringOrHexLiteral(o)
	if err != nil || v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
