package vx

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ImageID names one uploaded image in a terminal's Kitty graphics
// image store. It is opaque to the terminal protocol itself (which
// wants a uint32); Registry maps each ImageID to the small integer id
// the wire protocol actually carries.
type ImageID string

// NewImageID returns a fresh, globally-unique ImageID.
func NewImageID() ImageID { return ImageID(uuid.NewString()) }

// Placement records one on-screen instance of an uploaded image, the
// Kitty graphics protocol's separation between "data transmitted" and
// "data displayed at (row, col)" — the field set mirrors the subset of
// danielgatis-go-headless-term's KittyCommand display parameters a
// placing caller actually chooses: id, an explicit placement id for
// later deletion, and the origin cell.
type Placement struct {
	ID     ImageID
	PlacementID uint32
	Col, Row    int
	Cols, Rows  int // 0 means "let the terminal choose from the image's native size"
}

// Registry tracks every image this session has uploaded and placed,
// so a caller can re-place or delete by ImageID without re-sending
// pixel data, and so Window/Screen can record an ImageRef in the cells
// a placement covers.
type Registry struct {
	caps       Capabilities
	nextWireID uint32
	wireIDs    map[ImageID]uint32
	placements map[ImageID][]Placement
}

// NewRegistry returns an empty Registry. caps gates Upload behind
// ErrImageUnsupported until the terminal has confirmed Kitty graphics
// support (capability.go's capKittyGraphicsEvent fold-in).
func NewRegistry(caps Capabilities) *Registry {
	return &Registry{
		caps:       caps,
		nextWireID: 1,
		wireIDs:    make(map[ImageID]uint32),
		placements: make(map[ImageID][]Placement),
	}
}

// SetCapabilities updates the capabilities Upload checks, e.g. after a
// Loop's capability probe resolves following Registry construction.
func (r *Registry) SetCapabilities(caps Capabilities) { r.caps = caps }

// kittyChunkSize is the maximum base64 payload bytes per APC chunk the
// Kitty graphics protocol recommends, keeping any single escape
// sequence well under a terminal's typical line-buffering limits.
const kittyChunkSize = 4096

// Upload transmits RGBA pixel data (width*height*4 bytes, row-major)
// to the terminal under a fresh ImageID, chunked per the Kitty
// graphics protocol's m=1 (more data follows) / m=0 (final chunk)
// convention. It returns ErrImageUnsupported without writing anything
// if the terminal never confirmed Kitty graphics support.
func (r *Registry) Upload(w io.Writer, width, height int, rgba []byte) (ImageID, error) {
	if !r.caps.KittyGraphics {
		return "", ErrImageUnsupported
	}
	id := NewImageID()
	wireID := r.nextWireID
	r.nextWireID++
	r.wireIDs[id] = wireID

	encoded := base64.StdEncoding.EncodeToString(rgba)
	first := true
	for len(encoded) > 0 {
		chunk := encoded
		more := false
		if len(chunk) > kittyChunkSize {
			chunk = encoded[:kittyChunkSize]
			encoded = encoded[kittyChunkSize:]
			more = true
		} else {
			encoded = ""
		}

		var params []string
		if first {
			params = append(params, fmt.Sprintf("i=%d", wireID), "f=32",
				fmt.Sprintf("s=%d", width), fmt.Sprintf("v=%d", height))
			first = false
		}
		if more {
			params = append(params, "m=1")
		} else {
			params = append(params, "m=0")
		}

		ctrl := strings.Join(params, ",")
		if _, err := fmt.Fprintf(w, "\x1b_G%s;%s\x1b\\", ctrl, chunk); err != nil {
			return "", err
		}
	}
	return id, nil
}

// Place emits a Kitty graphics "put" command displaying id, recording
// the Placement for later lookup/deletion. p.Col and p.Row are only
// recorded: the command carries no position, so the terminal draws the
// image at its current cursor.
func (r *Registry) Place(w io.Writer, id ImageID, p Placement) error {
	wireID, ok := r.wireIDs[id]
	if !ok {
		return fmt.Errorf("vx: unknown image %q", id)
	}
	p.ID = id
	r.placements[id] = append(r.placements[id], p)

	var ctrl strings.Builder
	fmt.Fprintf(&ctrl, "a=p,i=%d", wireID)
	if p.PlacementID != 0 {
		fmt.Fprintf(&ctrl, ",p=%d", p.PlacementID)
	}
	if p.Cols > 0 {
		fmt.Fprintf(&ctrl, ",c=%d", p.Cols)
	}
	if p.Rows > 0 {
		fmt.Fprintf(&ctrl, ",r=%d", p.Rows)
	}
	_, err := fmt.Fprintf(w, "\x1b_G%s\x1b\\", ctrl.String())
	return err
}

// Delete removes every placement of id and releases its image data,
// via the Kitty graphics protocol's d=I (delete by id, with data)
// action.
func (r *Registry) Delete(w io.Writer, id ImageID) error {
	wireID, ok := r.wireIDs[id]
	if !ok {
		return nil
	}
	delete(r.wireIDs, id)
	delete(r.placements, id)
	_, err := fmt.Fprintf(w, "\x1b_Ga=d,d=I,i=%d\x1b\\", wireID)
	return err
}

// Placements returns every currently-recorded placement of id.
func (r *Registry) Placements(id ImageID) []Placement {
	return r.placements[id]
}
