package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")
