package shape

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// hasher writes a length-prefixed canonical encoding into a BLAKE2b-256
// digest.
type hasher struct {
	h   hash.Hash
	buf [8]byte
}

func newHasher() *hasher {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only a key longer than 64 bytes can fail.
		panic(err)
	}
	return &hasher{h: h}
}

func (h *hasher) u64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.h.Write(h.buf[:])
}

func (h *hasher) int(v int) { h.u64(uint64(int64(v))) }

func (h *hasher) f64(v float64) {
	if v == 0 {
		v = 0 // fold -0
	}
	h.u64(math.Float64bits(v))
}

func (h *hasher) bool(v bool) {
	if v {
		h.u64(1)
	} else {
		h.u64(0)
	}
}

func (h *hasher) str(s string) {
	h.int(len(s))
	h.h.Write([]byte(s))
}

func (h *hasher) sum() string { return hex.EncodeToString(h.h.Sum(nil)) }

// Hash returns the content hash of the shape and, recursively, of its
// operands. A shape that reaches itself through its operands is a
// composition error.
func (s *Shape) Hash() (string, error) {
	return s.hash(map[*Shape]bool{})
}

func (s *Shape) hash(path map[*Shape]bool) (string, error) {
	if path[s] {
		return "", errdefs.New(errdefs.KindComposition, "shape.Hash", s.name,
			fmt.Errorf("boolean operands form a cycle through %q", s.name))
	}
	path[s] = true
	defer delete(path, s)

	pts, err := s.ProcessedPoints()
	if err != nil {
		return "", errdefs.WithSubject(err, s.name)
	}

	h := newHasher()
	h.str("shape/v1")
	h.int(len(pts))
	for _, p := range pts {
		h.f64(p.X)
		h.f64(p.Y)
		h.int(int(p.Kind))
	}
	if s.circle != nil {
		h.str("circle")
		h.f64(s.circle.Center[0])
		h.f64(s.circle.Center[1])
		h.f64(s.circle.Radius)
	}
	h.int(int(s.connection))
	h.str(string(s.workplane))
	h.str(s.RotationAxis().String())
	if s.verb != nil {
		s.verb.encode(h)
	}
	h.int(len(s.placement))
	for _, a := range s.placement {
		h.f64(a)
	}
	if t, ok := s.Translate(); ok {
		h.str("translate")
		for _, v := range t {
			h.f64(v)
		}
	}
	h.str(s.name)
	h.str(s.material)

	for _, group := range []struct {
		tag string
		ops []Operand
	}{{"cut", s.cut}, {"intersect", s.intersect}, {"union", s.union}} {
		h.str(group.tag)
		h.int(len(group.ops))
		for _, o := range group.ops {
			switch v := o.(type) {
			case *Shape:
				sub, err := v.hash(path)
				if err != nil {
					return "", err
				}
				h.str(sub)
			case Solid:
				h.str(fmt.Sprintf("solid:%p", v.Solid))
			}
		}
	}
	return h.sum(), nil
}
