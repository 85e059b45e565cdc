// Package search implements report lookup with stateless paging: the whole
// view state travels in the inline buttons of the result message.
package search

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// PayloadLimit is the callback data budget per button: Telegram allows 64
// bytes and telebot spends four on "\f<unique>|" with unique "sr".
const PayloadLimit = 60

var (
	ErrMalformedPayload = errors.New("search: malformed payload")
	ErrPayloadTooLarge  = errors.New("search: payload too large")
)

// Action is what a button press asks for.
type Action string

const (
	ActNone       Action = ""
	ActOlder      Action = "old"
	ActNewer      Action = "new"
	ActConfirm    Action = "confirm"
	ActAttachment Action = "att"
	ActDownload   Action = "dl"
)

func (a Action) valid() bool {
	switch a {
	case ActNone, ActOlder, ActNewer, ActConfirm, ActAttachment, ActDownload:
		return true
	}
	return false
}

// OffsetSet is a sorted set of result offsets.
type OffsetSet []int

// Has reports whether off is in the set.
func (s OffsetSet) Has(off int) bool {
	_, ok := slices.BinarySearch(s, off)
	return ok
}

// With returns a copy of s including off.
func (s OffsetSet) With(off int) OffsetSet {
	i, ok := slices.BinarySearch(s, off)
	if ok {
		return s
	}
	return slices.Insert(slices.Clone(s), i, off)
}

// Without returns a copy of s excluding off.
func (s OffsetSet) Without(off int) OffsetSet {
	i, ok := slices.BinarySearch(s, off)
	if !ok {
		return s
	}
	out := slices.Delete(slices.Clone(s), i, i+1)
	if len(out) == 0 {
		return nil
	}
	return out
}

// View is the paging state of one result message.
type View struct {
	Action Action
	Offset int
	// NoAttachment holds offsets where the attachment button is hidden.
	NoAttachment OffsetSet
	// Confirmed is the viewer's membership in the shown report's vouching set.
	Confirmed    bool
	Query        string
	ShowDownload bool
}

// NewView is the first page of query.
func NewView(query string) View {
	return View{Query: query, ShowDownload: true}
}

// NormalizeQuery strips the segment delimiter from a raw query.
func NormalizeQuery(q string) string {
	return strings.ReplaceAll(q, "%", "")
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Encode renders every segment in a stable order.
func Encode(v View) string {
	return strings.Join(v.segments(false), "%")
}

// segments lists the encoded segments. compact leaves out those equal to
// their decode defaults.
func (v View) segments(compact bool) []string {
	segs := []string{"act=" + string(v.Action)}
	if !compact || v.Offset != 0 {
		segs = append(segs, "off="+strconv.Itoa(v.Offset))
	}
	if !compact || len(v.NoAttachment) > 0 {
		parts := make([]string, len(v.NoAttachment))
		for i, off := range v.NoAttachment {
			parts[i] = strconv.Itoa(off)
		}
		segs = append(segs, "noatt="+strings.Join(parts, "="))
	}
	if !compact || v.Confirmed {
		segs = append(segs, "cnf="+flag(v.Confirmed))
	}
	segs = append(segs, "qry="+v.Query)
	if !compact || !v.ShowDownload {
		segs = append(segs, "dl="+flag(v.ShowDownload))
	}
	return segs
}

// EncodeWithin encodes v in at most limit bytes. It first leaves out
// default-valued segments, then forgets hidden-attachment offsets farthest
// from the current one. Forgetting only brings a button back.
func EncodeWithin(v View, limit int) (string, error) {
	if s := Encode(v); len(s) <= limit {
		return s, nil
	}
	for {
		s := strings.Join(v.segments(true), "%")
		if len(s) <= limit {
			return s, nil
		}
		if len(v.NoAttachment) == 0 {
			return "", ErrPayloadTooLarge
		}
		v.NoAttachment = v.NoAttachment.Without(farthest(v.NoAttachment, v.Offset))
	}
}

func farthest(set OffsetSet, from int) int {
	best, dist := set[0], -1
	for _, off := range set {
		d := off - from
		if d < 0 {
			d = -d
		}
		if d > dist {
			best, dist = off, d
		}
	}
	return best
}

// QueryFits reports whether query leaves room for every button of any page
// up to offset 99999.
func QueryFits(query string) bool {
	worst := View{
		Action:    ActConfirm,
		Offset:    99999,
		Confirmed: true,
		Query:     query,
	}
	_, err := EncodeWithin(worst, PayloadLimit)
	return err == nil
}

// Decode parses a payload. Unknown segments are ignored and missing ones
// take their defaults.
func Decode(payload string) (View, error) {
	v := View{ShowDownload: true}
	for _, seg := range strings.Split(payload, "%") {
		name, val, _ := strings.Cut(seg, "=")
		var err error
		switch name {
		case "act":
			v.Action = Action(val)
			if !v.Action.valid() {
				err = ErrMalformedPayload
			}
		case "off":
			v.Offset, err = strconv.Atoi(val)
		case "noatt":
			v.NoAttachment, err = decodeOffsets(val)
		case "cnf":
			v.Confirmed, err = decodeFlag(val)
		case "qry":
			v.Query = val
		case "dl":
			v.ShowDownload, err = decodeFlag(val)
		}
		if err != nil {
			return View{}, ErrMalformedPayload
		}
	}
	return v, nil
}

func decodeOffsets(val string) (OffsetSet, error) {
	var set OffsetSet
	for _, part := range strings.Split(val, "=") {
		if part == "" {
			continue
		}
		off, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		set = set.With(off)
	}
	return set, nil
}

func decodeFlag(val string) (bool, error) {
	switch val {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, ErrMalformedPayload
}
