package diagram

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrNoGraphModel is returned when a document holds no mxGraphModel.
var ErrNoGraphModel = errors.New("no mxGraphModel found in document")

// Cell is a raw mxCell of a draw.io document, with any UserObject wrapper
// already merged in.
type Cell struct {
	ID     string
	Value  string
	Style  string
	Parent string
	Source string
	Target string
	Vertex bool
	Edge   bool
}

type xmlCell struct {
	ID     string `xml:"id,attr"`
	Value  string `xml:"value,attr"`
	Style  string `xml:"style,attr"`
	Parent string `xml:"parent,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Vertex string `xml:"vertex,attr"`
	Edge   string `xml:"edge,attr"`
}

// xmlUserObject carries the label and id of a wrapped mxCell.
type xmlUserObject struct {
	ID    string  `xml:"id,attr"`
	Label string  `xml:"label,attr"`
	Cell  xmlCell `xml:"mxCell"`
}

type xmlDiagram struct {
	Name  string `xml:"name,attr"`
	Inner []byte `xml:",innerxml"`
}

func (c xmlCell) toCell() Cell {
	return Cell{
		ID:     c.ID,
		Value:  c.Value,
		Style:  c.Style,
		Parent: c.Parent,
		Source: c.Source,
		Target: c.Target,
		Vertex: c.Vertex == "1",
		Edge:   c.Edge == "1",
	}
}

// Parse reads a draw.io document and returns the cells of its first page in
// document order. Both plain and compressed page payloads are accepted, as
// is a bare mxGraphModel.
func Parse(r io.Reader) ([]Cell, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, ErrNoGraphModel
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read diagram: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "diagram":
			var d xmlDiagram
			if err := dec.DecodeElement(&d, &se); err != nil {
				return nil, fmt.Errorf("failed to read diagram page: %w", err)
			}
			return parsePage(d.Inner)
		case "mxGraphModel":
			return collectCells(dec)
		}
	}
}

func parsePage(inner []byte) ([]Cell, error) {
	trimmed := bytes.TrimSpace(inner)
	if len(trimmed) == 0 {
		return nil, ErrNoGraphModel
	}
	if trimmed[0] == '<' {
		return collectCells(xml.NewDecoder(bytes.NewReader(trimmed)))
	}

	model, err := inflatePage(string(trimmed))
	if err != nil {
		return nil, err
	}
	return collectCells(xml.NewDecoder(strings.NewReader(model)))
}

// inflatePage decodes the compressed page format: base64 of raw deflate of
// URI-encoded XML.
func inflatePage(payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode compressed page: %w", err)
	}

	fr := flate.NewReader(bytes.NewReader(raw))
	defer fr.Close()

	data, err := io.ReadAll(fr)
	if err != nil {
		return "", fmt.Errorf("failed to inflate compressed page: %w", err)
	}

	text, err := url.PathUnescape(string(data))
	if err != nil {
		return "", fmt.Errorf("failed to unescape compressed page: %w", err)
	}
	return text, nil
}

// collectCells gathers cells until the end of the enclosing mxGraphModel.
func collectCells(dec *xml.Decoder) ([]Cell, error) {
	var cells []Cell
	seenModel := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read graph model: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "mxGraphModel":
				seenModel = true
			case "mxCell":
				var c xmlCell
				if err := dec.DecodeElement(&c, &t); err != nil {
					return nil, fmt.Errorf("failed to read cell: %w", err)
				}
				cells = append(cells, c.toCell())
			case "UserObject", "object":
				var u xmlUserObject
				if err := dec.DecodeElement(&u, &t); err != nil {
					return nil, fmt.Errorf("failed to read %s: %w", t.Name.Local, err)
				}
				cell := u.Cell.toCell()
				cell.ID = u.ID
				cell.Value = u.Label
				cells = append(cells, cell)
			}
		case xml.EndElement:
			if t.Name.Local == "mxGraphModel" {
				return cells, nil
			}
		}
	}

	if !seenModel && len(cells) == 0 {
		return nil, ErrNoGraphModel
	}
	return cells, nil
}
