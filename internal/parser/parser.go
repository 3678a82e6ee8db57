package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"dsa-rag/internal/models"
)

const (
	defaultChunkSize    = 1000 // bytes
	defaultChunkOverlap = 200  // bytes
	// formats without pages report this
	NoPage = 0
)

// Options controls chunking of extracted text.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = 0
	}
	return o
}

// ParseFile extracts text from filePath and splits it into chunks. Paged
// formats (PDF, PPTX, XLSX, ODS) tag each chunk with its 1-based page, slide or sheet.
func ParseFile(filePath string, opts Options) ([]models.Chunk, error) {
	opts = opts.withDefaults()
	ext := strings.ToLower(filepath.Ext(filePath))
	var (
		pages []page
		err   error
	)
	switch ext {
	case ".pdf":
		pages, err = parsePDF(filePath)
	case ".docx":
		pages, err = parseDOCX(filePath)
	case ".pptx":
		pages, err = parsePPTX(filePath)
	case ".xlsx":
		pages, err = parseXLSX(filePath)
	case ".ods":
		pages, err = parseODS(filePath)
	case ".md", ".markdown", ".txt":
		pages, err = parseText(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	var chunks []models.Chunk
	for _, p := range pages {
		chunks = append(chunks, getChunks(p, opts)...)
	}
	log.Debug().Str("file", filePath).Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Parsed document")
	return chunks, nil
}

type page struct {
	number int
	text   string
}

func parsePDF(filePath string) ([]page, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, page{number: i, text: pageText})
	}
	return pages, nil
}

func parseDOCX(filePath string) ([]page, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// GetContent returns the document XML; keep paragraph breaks
	content := r.Editable().GetContent()
	var paragraphs []string
	for _, p := range strings.Split(content, "</w:p>") {
		if text := strings.TrimSpace(extractTextFromXML(p, "w:t")); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return []page{{number: NoPage, text: strings.Join(paragraphs, "\n")}}, nil
}

func parsePPTX(filePath string) ([]page, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var slides []*zip.File
	for _, file := range f.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			slides = append(slides, file)
		}
	}
	// zip order is arbitrary; slide10 must follow slide9
	sort.Slice(slides, func(i, j int) bool { return slideNumber(slides[i].Name) < slideNumber(slides[j].Name) })

	var pages []page
	for _, file := range slides {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		pages = append(pages, page{number: slideNumber(file.Name), text: extractTextFromXML(string(data), "a:t")})
	}
	return pages, nil
}

func slideNumber(name string) int {
	var n int
	_, _ = fmt.Sscanf(strings.TrimPrefix(name, "ppt/slides/slide"), "%d.xml", &n)
	return n
}

func parseXLSX(filePath string) ([]page, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			if row == nil {
				continue
			}
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				if cell == nil {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, cell.String())
			}
			text.WriteString(strings.Join(cells, "\t"))
			text.WriteString("\n")
		}
		pages = append(pages, page{number: sheetNum + 1, text: text.String()})
	}
	return pages, nil
}

// parseODS reads spreadsheets through excelize, one page per sheet.
func parseODS(filePath string) ([]page, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheetName).Msg("Skipping unreadable sheet")
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
		pages = append(pages, page{number: sheetNum + 1, text: text.String()})
	}
	return pages, nil
}

func parseText(filePath string) ([]page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return []page{{number: NoPage, text: PlainText(data)}}, nil
}

func extractTextFromXML(xmlContent, tag string) string {
	open, closing := "<"+tag+">", "</"+tag+">"
	var text strings.Builder
	// also matches attributed forms such as <w:t xml:space="preserve">
	parts := strings.Split(strings.ReplaceAll(xmlContent, "<"+tag+" ", open+"\x00"), open)
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if strings.HasPrefix(part, "\x00") {
			gt := strings.Index(part, ">")
			if gt < 0 {
				continue
			}
			part = part[gt+1:]
		}
		if endIdx := strings.Index(part, closing); endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

// chunk content into chunks with maxChars and overlapChars
func chunkContent(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}
	content = strings.TrimSpace(content)
	contentLen := len(content)
	if contentLen == 0 {
		return nil
	}
	if contentLen <= maxChars {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < contentLen {
		end := min(start+maxChars, contentLen)

		// prefer to break on whitespace or a full stop within the last 10%
		if end < contentLen {
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
			for end > start+1 && !utf8.RuneStart(content[end]) {
				end--
			}
		}

		if chunk := strings.TrimSpace(content[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= contentLen {
			break
		}
		start = max(end-overlapChars, start+1)
		for start < end && !utf8.RuneStart(content[start]) {
			start++
		}
	}
	return chunks
}

func getChunks(p page, opts Options) []models.Chunk {
	var chunks []models.Chunk
	for i, chunkString := range chunkContent(p.text, opts.ChunkSize, opts.ChunkOverlap) {
		chunks = append(chunks, models.Chunk{
			Content:    chunkString,
			PageNumber: p.number,
			ChunkID:    i + 1,
		})
	}
	return chunks
}
