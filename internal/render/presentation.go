package render

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/productlist/internal/core"
	"github.com/gomutex/godocx"
)

// PresentationHeading is the first paragraph of the presentation document.
const PresentationHeading = "Product List for Presentations"

func init() {
	Register(Definition{
		Key:         "presentation",
		Group:       GroupDocuments,
		Order:       10,
		Label:       "Presentation list",
		Description: "Word document with one line per article, sorted by product name",
		FileName:    "product-list_presentation.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Renderer:    RendererFunc(renderPresentation),
	})
}

// renderPresentation writes a level 1 heading followed by one paragraph per
// presentation line.
func renderPresentation(w io.Writer, c *core.Conversion) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	if _, err := doc.AddHeading(PresentationHeading, 1); err != nil {
		return fmt.Errorf("presentation heading: %w", err)
	}
	for _, line := range c.Presentation() {
		doc.AddParagraph(line.Text)
	}

	if err := doc.Write(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
