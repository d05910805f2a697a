package document

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/ledongthuc/pdf"
)

// maxFieldDepth bounds the walk through /Kids so malformed, cyclic forms terminate.
const maxFieldDepth = 32

type PDFLoader struct{}

func (PDFLoader) Load(raw []byte) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	return &pdfDocument{
		reader:     reader,
		signatures: collectSignatures(reader.Trailer().Key("Root").Key("AcroForm").Key("Fields")),
	}, nil
}

type pdfDocument struct {
	reader     *pdf.Reader
	signatures []Signature

	textOnce sync.Once
	text     string
	textErr  error
}

func (d *pdfDocument) Signatures() []Signature {
	return append([]Signature(nil), d.signatures...)
}

func (d *pdfDocument) Text() (string, error) {
	d.textOnce.Do(func() {
		d.text, d.textErr = d.extractText()
	})
	return d.text, d.textErr
}

func (d *pdfDocument) extractText() (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadableDocument, r)
		}
	}()

	plain, err := d.reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	return string(b), nil
}

// collectSignatures returns the /V dictionaries of every field whose field type,
// possibly inherited from an ancestor, is /Sig.
func collectSignatures(fields pdf.Value) []Signature {
	var sigs []Signature

	var walk func(field pdf.Value, fieldType string, depth int)
	walk = func(field pdf.Value, fieldType string, depth int) {
		if depth > maxFieldDepth || field.Kind() != pdf.Dict {
			return
		}
		if ft := field.Key("FT"); ft.Kind() == pdf.Name {
			fieldType = ft.Name()
		}

		if fieldType == "Sig" {
			if v := field.Key("V"); v.Kind() == pdf.Dict {
				sigs = append(sigs, Signature{
					Name:      v.Key("Name").Text(),
					Filter:    v.Key("Filter").Name(),
					SubFilter: v.Key("SubFilter").Name(),
				})
			}
		}

		kids := field.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			walk(kids.Index(i), fieldType, depth+1)
		}
	}

	for i := 0; i < fields.Len(); i++ {
		walk(fields.Index(i), "", 0)
	}
	return sigs
}
