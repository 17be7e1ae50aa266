package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ImageReader recognizes text in an encoded image.
type ImageReader interface {
	RecognizeImage(imageData []byte) (string, error)
}

// PageImageRecognizer is a grades.Recognizer that runs OCR over the images
// embedded in a scanned page. The document is parsed on first use.
type PageImageRecognizer struct {
	path   string
	reader ImageReader

	once    sync.Once
	ctx     *model.Context
	loadErr error
}

// NewPageImageRecognizer creates a recognizer for the PDF at path.
func NewPageImageRecognizer(path string, reader ImageReader) *PageImageRecognizer {
	return &PageImageRecognizer{path: path, reader: reader}
}

// Recognize returns the text found in the images of a page, one image
// after another in object order.
func (r *PageImageRecognizer) Recognize(ctx context.Context, page int) (string, error) {
	r.once.Do(r.load)
	if r.loadErr != nil {
		return "", r.loadErr
	}
	if page < 1 || page > r.ctx.PageCount {
		return "", fmt.Errorf("page %d out of range (1-%d)", page, r.ctx.PageCount)
	}

	images, err := r.pageImages(page)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", fmt.Errorf("no images on page %d", page)
	}

	var texts []string
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return "", fmt.Errorf("failed to read image %s on page %d: %w", img.Name, page, err)
		}
		text, err := r.reader.RecognizeImage(data)
		if err != nil {
			return "", fmt.Errorf("failed to recognize image %s on page %d: %w", img.Name, page, err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

func (r *PageImageRecognizer) load() {
	f, err := os.Open(r.path)
	if err != nil {
		r.loadErr = fmt.Errorf("failed to open file: %w", err)
		return
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		r.loadErr = fmt.Errorf("failed to read PDF context: %w", err)
		return
	}
	r.ctx = ctx
}

// pageImages extracts the page's images sorted by object number.
func (r *PageImageRecognizer) pageImages(page int) (images []model.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			images, err = nil, fmt.Errorf("failed to extract images of page %d: %v", page, rec)
		}
	}()

	byObj, err := pdfcpu.ExtractPageImages(r.ctx, page, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images of page %d: %w", page, err)
	}

	objNrs := make([]int, 0, len(byObj))
	for objNr := range byObj {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	images = make([]model.Image, 0, len(objNrs))
	for _, objNr := range objNrs {
		images = append(images, byObj[objNr])
	}
	return images, nil
}
