// Package pptx writes minimal PowerPoint (.pptx) documents: a zip archive of
// OOXML parts with text frames and embedded images, enough for exported
// slide decks. It deliberately supports only what the exporter needs.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// emuPerInch converts the inch-based layout coordinates into English Metric
// Units, the native unit of OOXML geometry.
const emuPerInch = 914400

// Page geometry: fixed 10in x 7.5in custom layout, declared once per
// document.
const (
	pageWidthEMU  = 10 * emuPerInch
	pageHeightEMU = 15 * emuPerInch / 2
)

// TextOptions positions and styles a text frame. Coordinates and sizes are
// in inches; FontSize is in points; Color is an RRGGBB hex string.
type TextOptions struct {
	X, Y, W, H float64
	FontSize   int
	Bold       bool
	Color      string
	Align      string // "" = left, "ctr" = centered
	Bullet     bool   // one bulleted paragraph per input line
}

// ImageOptions positions an embedded image. When Contain is true the image
// is scaled to fit inside the box preserving aspect ratio and centered.
type ImageOptions struct {
	X, Y, W, H float64
	Contain    bool
}

type textFrame struct {
	lines []string
	opts  TextOptions
}

type imageFrame struct {
	data        []byte
	contentType string
	opts        ImageOptions
}

// Slide accumulates frames; rendering happens when the presentation is
// written.
type Slide struct {
	texts  []textFrame
	images []imageFrame
}

// Presentation is an in-memory pptx document under construction.
type Presentation struct {
	title  string
	slides []*Slide
}

func New(title string) *Presentation {
	return &Presentation{title: title}
}

// AddSlide appends a slide and returns it for population. Slides appear in
// the document in the order they were added.
func (p *Presentation) AddSlide() *Slide {
	s := &Slide{}
	p.slides = append(p.slides, s)
	return s
}

func (p *Presentation) SlideCount() int {
	return len(p.slides)
}

// AddText places a text frame. The text is split on newlines; with
// opts.Bullet each line becomes its own bulleted paragraph.
func (s *Slide) AddText(text string, opts TextOptions) {
	s.texts = append(s.texts, textFrame{lines: strings.Split(text, "\n"), opts: opts})
}

// AddImage embeds raw image bytes. contentType selects the part extension;
// unknown types are stored as jpeg.
func (s *Slide) AddImage(data []byte, contentType string, opts ImageOptions) {
	s.images = append(s.images, imageFrame{data: data, contentType: contentType, opts: opts})
}

// Bytes assembles the document and returns the complete zip archive.
func (p *Presentation) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write assembles the document into w.
func (p *Presentation) Write(w io.Writer) error {
	if len(p.slides) == 0 {
		return fmt.Errorf("presentation has no slides")
	}

	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", p.contentTypes()},
		{"_rels/.rels", rootRels},
		{"docProps/core.xml", p.coreProps()},
		{"docProps/app.xml", p.appProps()},
		{"ppt/presentation.xml", p.presentationXML()},
		{"ppt/_rels/presentation.xml.rels", p.presentationRels()},
		{"ppt/slideMasters/slideMaster1.xml", slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/theme/theme1.xml", theme},
	}

	mediaIndex := 0
	for i, slide := range p.slides {
		n := i + 1
		slideMedia := make([]string, 0, len(slide.images))
		for range slide.images {
			mediaIndex++
			slideMedia = append(slideMedia, fmt.Sprintf("image%d", mediaIndex))
		}
		parts = append(parts,
			struct {
				name    string
				content string
			}{fmt.Sprintf("ppt/slides/slide%d.xml", n), slide.xml()},
			struct {
				name    string
				content string
			}{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slide.rels(slideMedia)},
		)
		for j, img := range slide.images {
			f, err := zw.Create(fmt.Sprintf("ppt/media/%s.%s", slideMedia[j], extensionFor(img.contentType)))
			if err != nil {
				return err
			}
			if _, err := f.Write(img.data); err != nil {
				return err
			}
		}
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(f, part.content); err != nil {
			return err
		}
	}

	return zw.Close()
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	default:
		return "jpeg"
	}
}

func (p *Presentation) contentTypes() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="gif" ContentType="image/gif"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range p.slides {
		b.WriteString(fmt.Sprintf(`<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1))
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func (p *Presentation) coreProps() string {
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + escapeXML(p.title) + `</dc:title>` +
		`</cp:coreProperties>`
}

func (p *Presentation) appProps() string {
	return xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		fmt.Sprintf(`<Slides>%d</Slides>`, len(p.slides)) +
		`<Application>slidechat-backend</Application>` +
		`</Properties>`
}

func (p *Presentation) presentationXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation ` + nsMain + `>`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range p.slides {
		b.WriteString(fmt.Sprintf(`<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 2+i))
	}
	b.WriteString(`</p:sldIdLst>`)
	b.WriteString(fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/>`, pageWidthEMU, pageHeightEMU))
	b.WriteString(fmt.Sprintf(`<p:notesSz cx="%d" cy="%d"/>`, pageHeightEMU, pageWidthEMU))
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (p *Presentation) presentationRels() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range p.slides {
		b.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, 2+i, i+1))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// rels emits the per-slide relationship part: the layout plus one image
// relationship per embedded picture, in insertion order. mediaNames carries
// the document-wide media part names assigned to this slide's images.
func (s *Slide) rels(mediaNames []string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	for j, img := range s.images {
		b.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/%s.%s"/>`, 2+j, mediaNames[j], extensionFor(img.contentType)))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func (s *Slide) xml() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld ` + nsMain + `>`)
	b.WriteString(`<p:cSld>`)
	b.WriteString(`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`)
	b.WriteString(`<p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)

	shapeID := 2
	for _, frame := range s.texts {
		b.WriteString(textShapeXML(shapeID, frame))
		shapeID++
	}
	for j, img := range s.images {
		b.WriteString(imageShapeXML(shapeID, 2+j, img))
		shapeID++
	}

	b.WriteString(`</p:spTree>`)
	b.WriteString(`</p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func emu(inches float64) int64 {
	return int64(inches * emuPerInch)
}

func textShapeXML(id int, frame textFrame) string {
	opts := frame.opts
	color := opts.Color
	if color == "" {
		color = "000000"
	}

	var b strings.Builder
	b.WriteString(`<p:sp>`)
	b.WriteString(fmt.Sprintf(`<p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id))
	b.WriteString(`<p:spPr>`)
	b.WriteString(fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		emu(opts.X), emu(opts.Y), emu(opts.W), emu(opts.H)))
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`)
	b.WriteString(`</p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square" rtlCol="0"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)

	bold := ""
	if opts.Bold {
		bold = ` b="1"`
	}

	for _, line := range frame.lines {
		b.WriteString(`<a:p><a:pPr`)
		if opts.Align != "" {
			b.WriteString(fmt.Sprintf(` algn="%s"`, opts.Align))
		}
		b.WriteString(`>`)
		if opts.Bullet {
			b.WriteString(`<a:buFont typeface="Arial" pitchFamily="34" charset="0"/><a:buChar char="&#8226;"/>`)
		} else {
			b.WriteString(`<a:buNone/>`)
		}
		b.WriteString(`</a:pPr>`)
		b.WriteString(fmt.Sprintf(`<a:r><a:rPr lang="en-US" sz="%d"%s dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r>`,
			opts.FontSize*100, bold, color, escapeXML(line)))
		b.WriteString(`</a:p>`)
	}

	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func imageShapeXML(id, relID int, img imageFrame) string {
	x, y := emu(img.opts.X), emu(img.opts.Y)
	w, h := emu(img.opts.W), emu(img.opts.H)

	if img.opts.Contain {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(img.data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
			scaleW := float64(w) / float64(cfg.Width)
			scaleH := float64(h) / float64(cfg.Height)
			scale := scaleW
			if scaleH < scale {
				scale = scaleH
			}
			fitW := int64(float64(cfg.Width) * scale)
			fitH := int64(float64(cfg.Height) * scale)
			// center inside the declared box
			x += (w - fitW) / 2
			y += (h - fitH) / 2
			w, h = fitW, fitH
		}
	}

	var b strings.Builder
	b.WriteString(`<p:pic>`)
	b.WriteString(fmt.Sprintf(`<p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, id, id))
	b.WriteString(fmt.Sprintf(`<p:blipFill><a:blip r:embed="rId%d"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, relID))
	b.WriteString(`<p:spPr>`)
	b.WriteString(fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, w, h))
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`)
	b.WriteString(`</p:spPr>`)
	b.WriteString(`</p:pic>`)
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
