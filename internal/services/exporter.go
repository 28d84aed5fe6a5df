package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"slidechat-backend/internal/models"
	"slidechat-backend/internal/pptx"
)

// PptxMIMEType is the standard presentation-document content type.
const PptxMIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Some image hosts reject non-browser clients, so fetches carry a browser
// request identity.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ExportService assembles a finalized slide schema into a pptx byte stream,
// re-fetching each slide's image at export time.
type ExportService struct {
	httpClient    *http.Client
	maxConcurrent int
}

func NewExportService(httpClient *http.Client, maxConcurrent int) *ExportService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ExportService{
		httpClient:    httpClient,
		maxConcurrent: maxConcurrent,
	}
}

type fetchedImage struct {
	data        []byte
	contentType string
}

// fetchImage downloads one slide's image. Every failure path returns nil
// data: image problems degrade to a placeholder, never fail the export.
func (s *ExportService) fetchImage(ctx context.Context, imageURL string) *fetchedImage {
	if imageURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		log.Printf("Error building image request for %s: %v", imageURL, err)
		return nil
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("Error processing image for PPTX: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Failed to download image from: %s. Status: %d", imageURL, resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return &fetchedImage{data: data, contentType: contentType}
}

// Export builds the complete pptx document for the given slides. Image
// fetches for all slides run concurrently; the document is finalized only
// after every slide settles. Output slide order always matches input order.
func (s *ExportService) Export(ctx context.Context, slides []models.Slide, title string) ([]byte, error) {
	if len(slides) == 0 {
		return nil, &EmptyInputError{Message: "No slide data provided"}
	}

	// Fan out the image fetches, correlated by slide index.
	images := make([]*fetchedImage, len(slides))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, slide := range slides {
		if slide.Image == "" {
			continue
		}
		wg.Add(1)
		go func(idx int, imageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			images[idx] = s.fetchImage(ctx, imageURL)
		}(i, slide.Image)
	}
	wg.Wait()

	doc := pptx.New(title)
	for i, slide := range slides {
		out := doc.AddSlide()

		out.AddText(slide.Title, pptx.TextOptions{
			X: 0.5, Y: 0.25, W: 9.0, H: 1.0,
			FontSize: 32, Bold: true, Color: "000000",
		})

		if len(slide.Content) > 0 {
			out.AddText(strings.Join(slide.Content, "\n"), pptx.TextOptions{
				X: 0.5, Y: 1.5, W: 5.0, H: 4.0,
				FontSize: 18, Color: "363636", Bullet: true,
			})
		}

		if slide.Image != "" {
			if img := images[i]; img != nil {
				out.AddImage(img.data, img.contentType, pptx.ImageOptions{
					X: 5.8, Y: 1.5, W: 4.0, H: 5.0,
					Contain: true,
				})
			} else {
				// Visible failure beats a silently blank region.
				out.AddText("Image Failed to Load (Server Error)", pptx.TextOptions{
					X: 6.0, Y: 3.5, W: 3.5, H: 1.0,
					FontSize: 14, Color: "FF0000", Align: "ctr",
				})
			}
		}
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble presentation: %w", err)
	}
	return data, nil
}

// SanitizeFilename derives the download filename from the presentation
// title: spaces become underscores and header-breaking characters are
// dropped.
func SanitizeFilename(title string) string {
	name := strings.ReplaceAll(title, " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = "presentation"
	}
	return name + ".pptx"
}
