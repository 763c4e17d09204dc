// Package emails turns exported mail files into the plain thread text the
// analyzer expects, as if the messages had been pasted one after another.
package emails

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Message is one email of a thread
type Message struct {
	From    string
	To      string
	Subject string
	Date    time.Time
	Body    string
}

// IsMailFile reports whether path has an extension ReadThread understands
func IsMailFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml", ".mbox":
		return true
	}
	return false
}

// ReadThread loads an .eml or .mbox file and renders it as thread text,
// oldest message first.
func ReadThread(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open mail file: %w", err)
	}
	defer file.Close()

	var messages []Message
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		msg, err := parseMessage(file)
		if err != nil {
			return "", err
		}
		messages = []Message{msg}
	case ".mbox":
		messages, err = ParseMBOX(file)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported mail file %q", filepath.Base(path))
	}

	return RenderThread(messages), nil
}

// ParseMBOX splits an mbox stream on "From " separator lines. Messages that
// fail to parse are skipped.
func ParseMBOX(r io.Reader) ([]Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var messages []Message
	var current bytes.Buffer

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if msg, err := parseMessage(&current); err == nil {
			messages = append(messages, msg)
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "From ") {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading MBOX: %w", err)
	}

	return messages, nil
}

// RenderThread writes messages oldest first, each with its headers
func RenderThread(messages []Message) string {
	sorted := make([]Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var b strings.Builder
	for i, msg := range sorted {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "From: %s\n", msg.From)
		if msg.To != "" {
			fmt.Fprintf(&b, "To: %s\n", msg.To)
		}
		if !msg.Date.IsZero() {
			fmt.Fprintf(&b, "Date: %s\n", msg.Date.Format(time.RFC1123Z))
		}
		fmt.Fprintf(&b, "Subject: %s\n\n", msg.Subject)
		b.WriteString(strings.TrimSpace(msg.Body))
		b.WriteString("\n")
	}
	return b.String()
}

func parseMessage(r io.Reader) (Message, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return Message{}, fmt.Errorf("failed to read email message: %w", err)
	}

	header := msg.Header
	out := Message{
		From:    decodeHeader(header.Get("From")),
		To:      decodeHeader(header.Get("To")),
		Subject: decodeHeader(header.Get("Subject")),
	}
	if date, err := mail.ParseDate(header.Get("Date")); err == nil {
		out.Date = date
	}

	out.Body, err = extractBody(msg)
	if err != nil {
		return Message{}, fmt.Errorf("failed to extract body: %w", err)
	}

	return out, nil
}

// extractBody extracts the body text from an email message
func extractBody(msg *mail.Message) (string, error) {
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		body, err := io.ReadAll(msg.Body)
		return string(body), err
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(msg.Body, params["boundary"])
	}

	body, err := decodePart(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(mediaType, "text/html") {
		return stripHTML(body), nil
	}
	return body, nil
}

// extractMultipartBody prefers text/plain parts and falls back to stripped HTML
func extractMultipartBody(body io.Reader, boundary string) (string, error) {
	mr := multipart.NewReader(body, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		partType := part.Header.Get("Content-Type")
		mediaType, params, _ := mime.ParseMediaType(partType)

		if strings.HasPrefix(mediaType, "multipart/") {
			if nested, err := extractMultipartBody(part, params["boundary"]); err == nil {
				textParts = append(textParts, nested)
			}
			continue
		}

		content, err := decodePart(part, part.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(mediaType, "text/plain"):
			textParts = append(textParts, content)
		case strings.HasPrefix(mediaType, "text/html"):
			htmlParts = append(htmlParts, content)
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n\n"), nil
	}
	return stripHTML(strings.Join(htmlParts, "\n\n")), nil
}

func decodePart(body io.Reader, transferEncoding string) (string, error) {
	reader := body
	switch strings.ToLower(transferEncoding) {
	case "quoted-printable":
		reader = quotedprintable.NewReader(body)
	case "base64":
		reader = base64.NewDecoder(base64.StdEncoding, body)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

var htmlBreaks = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n\n", "</div>", "\n")

// stripHTML drops tags and decodes the common entities. Script and style
// blocks are removed with their content.
func stripHTML(html string) string {
	html = removeTagsWithContent(html)
	html = htmlBreaks.Replace(html)

	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	text := strings.NewReplacer("&nbsp;", " ", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&amp;", "&").Replace(b.String())
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}

var tagsWithContent = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)\s*>`)

// removeTagsWithContent cuts script and style sections including their body
func removeTagsWithContent(html string) string {
	return tagsWithContent.ReplaceAllString(html, "")
}

func decodeHeader(header string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}
