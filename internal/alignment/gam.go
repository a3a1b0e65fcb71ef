// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alignment

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/algbio/alneval/common"

	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/encoding/protowire"
)

// gamTypeTag is the type tag vg writes as the first message of each batch.
const gamTypeTag = "GAM"

// maxMessage bounds the size of a single framed message.
const maxMessage = 1 << 30

// Field numbers of the vg schema messages read by the decoder. Everything
// else in a message is skipped.
const (
	alignmentPath = 2 // Alignment.path
	alignmentName = 3 // Alignment.name

	pathMapping = 2 // Path.mapping

	mappingPosition = 1 // Mapping.position
	mappingEdit     = 2 // Mapping.edit

	positionNodeID  = 1 // Position.node_id
	positionOffset  = 2 // Position.offset
	positionReverse = 4 // Position.is_reverse
	positionName    = 5 // Position.name

	editFromLength = 1 // Edit.from_length
)

// gamStep is one mapping of a GAM alignment path.
type gamStep struct {
	Node    string
	Offset  int
	Reverse bool

	// Consumed is the sum of from_length over the mapping's edits, the
	// number of vertex bases the step aligns to.
	Consumed int
}

// gamAlignment is the part of a GAM Alignment message the decoder needs.
type gamAlignment struct {
	Name  string
	Steps []gamStep
}

// LoadGAM decodes the GAM file at path.
func LoadGAM(path string, g Labeler) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set := NewSet(path)
	if err := ReadGAM(f, g, set.Add); err != nil {
		return nil, common.InFile(err, path)
	}
	return set, nil
}

// ReadGAM decodes a gzip-compressed GAM stream from r and calls fn with
// each record in stream order.
func ReadGAM(r io.Reader, g Labeler, fn func(*Record)) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return &common.FormatError{Err: fmt.Errorf("not a gzip stream: %w", err)}
	}
	defer zr.Close()
	br := bufio.NewReaderSize(zr, 1<<20)

	var (
		buf []byte
		msg int
	)
	for batch := 1; ; batch++ {
		count, err := binary.ReadUvarint(br)
		if err == io.EOF {
			return nil
		} else if err != nil {
			return common.Formatf(fmt.Sprintf("batch %d", batch), "reading message count: %v", err)
		}
		for i := uint64(0); i < count; i++ {
			msg++
			size, err := binary.ReadUvarint(br)
			if err != nil {
				return common.Formatf(fmt.Sprintf("message %d", msg), "reading message length: %v", unexpected(err))
			}
			if size > maxMessage {
				return common.Formatf(fmt.Sprintf("message %d", msg), "message length %d too large", size)
			}
			if uint64(cap(buf)) < size {
				buf = make([]byte, size)
			}
			buf = buf[:size]
			if _, err := io.ReadFull(br, buf); err != nil {
				return common.Formatf(fmt.Sprintf("message %d", msg), "reading message: %v", unexpected(err))
			}
			if i == 0 && string(buf) == gamTypeTag {
				continue
			}
			a, err := parseGAM(buf)
			if err != nil {
				return common.Formatf(fmt.Sprintf("message %d", msg), "%v", err)
			}
			rec, err := a.record(g)
			if err != nil {
				return withRecord(err, "alignment "+a.Name)
			}
			fn(rec)
		}
	}
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// withRecord reports err against record of the alignment file being
// decoded, keeping any vertex or step detail in the message.
func withRecord(err error, record string) error {
	var fe *common.FormatError
	if errors.As(err, &fe) {
		if fe.Record != "" {
			return &common.FormatError{Record: record, Err: fmt.Errorf("%s: %w", fe.Record, fe.Err)}
		}
		return &common.FormatError{Record: record, Err: fe.Err}
	}
	return &common.FormatError{Record: record, Err: err}
}

// record folds the steps of a into a Frame and reconstructs the sequence.
func (a *gamAlignment) record(g Labeler) (*Record, error) {
	name := strings.Fields(a.Name)
	if len(name) == 0 {
		return nil, fmt.Errorf("alignment has no name")
	}
	path := make([]string, len(a.Steps))
	for i, s := range a.Steps {
		path[i] = s.Node
	}
	ls, err := labels(g, path)
	if err != nil {
		return nil, err
	}
	frame, rev := foldGAM(a.Steps, ls)
	seq, err := Reconstruct(ls, frame)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:       name[0],
		Seq:      seq,
		Path:     path,
		RevSteps: rev,
		First:    frame.First,
		Last:     frame.Last,
	}, nil
}

// foldGAM computes the Frame of a GAM path. GAM offsets are relative to the
// start of the traversed strand of a vertex, so on a reverse path they are
// mirrored into forward coordinates. It also returns the number of reverse
// steps.
func foldGAM(steps []gamStep, labels []string) (Frame, int) {
	var rev int
	for _, s := range steps {
		if s.Reverse {
			rev++
		}
	}
	f := Frame{Reverse: rev > 0}
	n := len(steps)
	if n == 0 {
		return f, rev
	}
	f.First = steps[0].Offset
	if f.Reverse {
		f.First = len(labels[0]) - steps[0].Offset
	}
	end := steps[n-1].Consumed
	if n == 1 {
		end += steps[0].Offset
	}
	f.Last = end
	if f.Reverse {
		f.Last = len(labels[n-1]) - end
	}
	return f, rev
}

// fields calls fn for each field of the protobuf message b. fn returns the
// number of bytes of v it consumed, a negative protowire error code, or 0
// to have the field skipped.
func fields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m := fn(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func parseGAM(b []byte) (*gamAlignment, error) {
	a := &gamAlignment{}
	var perr error
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		if typ != protowire.BytesType {
			return 0
		}
		switch num {
		case alignmentName:
			s, n := protowire.ConsumeBytes(v)
			if n > 0 {
				a.Name = string(s)
			}
			return n
		case alignmentPath:
			p, n := protowire.ConsumeBytes(v)
			if n > 0 && perr == nil {
				perr = a.parsePath(p)
			}
			return n
		}
		return 0
	})
	if err == nil {
		err = perr
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *gamAlignment) parsePath(b []byte) error {
	var perr error
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		if num != pathMapping || typ != protowire.BytesType {
			return 0
		}
		m, n := protowire.ConsumeBytes(v)
		if n > 0 && perr == nil {
			var s gamStep
			perr = s.parseMapping(m)
			a.Steps = append(a.Steps, s)
		}
		return n
	})
	if err != nil {
		return err
	}
	return perr
}

func (s *gamStep) parseMapping(b []byte) error {
	var (
		perr   error
		nodeID int64
		named  bool
	)
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		if typ != protowire.BytesType {
			return 0
		}
		switch num {
		case mappingPosition:
			p, n := protowire.ConsumeBytes(v)
			if n > 0 && perr == nil {
				perr = fields(p, func(num protowire.Number, typ protowire.Type, v []byte) int {
					switch {
					case num == positionName && typ == protowire.BytesType:
						name, n := protowire.ConsumeBytes(v)
						if n > 0 && len(name) > 0 {
							s.Node = string(name)
							named = true
						}
						return n
					case typ != protowire.VarintType:
						return 0
					}
					x, n := protowire.ConsumeVarint(v)
					if n < 0 {
						return n
					}
					switch num {
					case positionNodeID:
						nodeID = int64(x)
					case positionOffset:
						s.Offset = int(int64(x))
					case positionReverse:
						s.Reverse = protowire.DecodeBool(x)
					}
					return n
				})
			}
			return n
		case mappingEdit:
			e, n := protowire.ConsumeBytes(v)
			if n > 0 && perr == nil {
				perr = fields(e, func(num protowire.Number, typ protowire.Type, v []byte) int {
					if num != editFromLength || typ != protowire.VarintType {
						return 0
					}
					x, n := protowire.ConsumeVarint(v)
					if n > 0 {
						s.Consumed += int(int32(x))
					}
					return n
				})
			}
			return n
		}
		return 0
	})
	if err == nil {
		err = perr
	}
	if err != nil {
		return err
	}
	if !named {
		s.Node = strconv.FormatInt(nodeID, 10)
	}
	return nil
}
