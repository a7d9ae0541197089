package reactor

import (
	"github.com/tinylib/msgp/msgp"
)

// MessagePack codecs for the h5m model. Fields are encoded as maps keyed
// by their msg tags; unknown keys are skipped on decode.

// EncodeMsg implements msgp.Encodable.
func (z *H5M) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(5); err != nil {
		return
	}
	if err = en.WriteString("format"); err != nil {
		return
	}
	if err = en.WriteString(z.Format); err != nil {
		return msgp.WrapError(err, "Format")
	}
	if err = en.WriteString("model_id"); err != nil {
		return
	}
	if err = en.WriteString(z.ModelID); err != nil {
		return msgp.WrapError(err, "ModelID")
	}
	if err = en.WriteString("faceting_tolerance"); err != nil {
		return
	}
	if err = en.WriteFloat64(z.FacetingTolerance); err != nil {
		return msgp.WrapError(err, "FacetingTolerance")
	}
	if err = en.WriteString("merge_tolerance"); err != nil {
		return
	}
	if err = en.WriteFloat64(z.MergeTolerance); err != nil {
		return msgp.WrapError(err, "MergeTolerance")
	}
	if err = en.WriteString("volumes"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Volumes))); err != nil {
		return msgp.WrapError(err, "Volumes")
	}
	for i := range z.Volumes {
		if err = z.Volumes[i].EncodeMsg(en); err != nil {
			return msgp.WrapError(err, "Volumes", i)
		}
	}
	return
}

// DecodeMsg implements msgp.Decodable.
func (z *H5M) DecodeMsg(dc *msgp.Reader) (err error) {
	var field []byte
	var n uint32
	n, err = dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for n > 0 {
		n--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "format":
			if z.Format, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Format")
			}
		case "model_id":
			if z.ModelID, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "ModelID")
			}
		case "faceting_tolerance":
			if z.FacetingTolerance, err = dc.ReadFloat64(); err != nil {
				return msgp.WrapError(err, "FacetingTolerance")
			}
		case "merge_tolerance":
			if z.MergeTolerance, err = dc.ReadFloat64(); err != nil {
				return msgp.WrapError(err, "MergeTolerance")
			}
		case "volumes":
			var sz uint32
			if sz, err = dc.ReadArrayHeader(); err != nil {
				return msgp.WrapError(err, "Volumes")
			}
			z.Volumes = make([]H5MVolume, sz)
			for i := range z.Volumes {
				if err = z.Volumes[i].DecodeMsg(dc); err != nil {
					return msgp.WrapError(err, "Volumes", i)
				}
			}
		default:
			if err = dc.Skip(); err != nil {
				return msgp.WrapError(err)
			}
		}
	}
	return
}

// EncodeMsg implements msgp.Encodable.
func (z *H5MVolume) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(7); err != nil {
		return
	}
	if err = en.WriteString("id"); err != nil {
		return
	}
	if err = en.WriteInt(z.ID); err != nil {
		return msgp.WrapError(err, "ID")
	}
	if err = en.WriteString("name"); err != nil {
		return
	}
	if err = en.WriteString(z.Name); err != nil {
		return msgp.WrapError(err, "Name")
	}
	if err = en.WriteString("material"); err != nil {
		return
	}
	if err = en.WriteString(z.Material); err != nil {
		return msgp.WrapError(err, "Material")
	}
	if err = en.WriteString("reflective"); err != nil {
		return
	}
	if err = en.WriteBool(z.Reflective); err != nil {
		return msgp.WrapError(err, "Reflective")
	}
	if err = en.WriteString("vertices"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Vertices))); err != nil {
		return msgp.WrapError(err, "Vertices")
	}
	for i := range z.Vertices {
		if err = en.WriteFloat32(z.Vertices[i]); err != nil {
			return msgp.WrapError(err, "Vertices", i)
		}
	}
	if err = en.WriteString("triangles"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Triangles))); err != nil {
		return msgp.WrapError(err, "Triangles")
	}
	for i := range z.Triangles {
		if err = en.WriteUint32(z.Triangles[i]); err != nil {
			return msgp.WrapError(err, "Triangles", i)
		}
	}
	if err = en.WriteString("adjacent"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Adjacent))); err != nil {
		return msgp.WrapError(err, "Adjacent")
	}
	for i := range z.Adjacent {
		if err = en.WriteInt(z.Adjacent[i]); err != nil {
			return msgp.WrapError(err, "Adjacent", i)
		}
	}
	return
}

// DecodeMsg implements msgp.Decodable.
func (z *H5MVolume) DecodeMsg(dc *msgp.Reader) (err error) {
	var field []byte
	var n uint32
	n, err = dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for n > 0 {
		n--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "id":
			if z.ID, err = dc.ReadInt(); err != nil {
				return msgp.WrapError(err, "ID")
			}
		case "name":
			if z.Name, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Name")
			}
		case "material":
			if z.Material, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Material")
			}
		case "reflective":
			if z.Reflective, err = dc.ReadBool(); err != nil {
				return msgp.WrapError(err, "Reflective")
			}
		case "vertices":
			var sz uint32
			if sz, err = dc.ReadArrayHeader(); err != nil {
				return msgp.WrapError(err, "Vertices")
			}
			z.Vertices = make([]float32, sz)
			for i := range z.Vertices {
				if z.Vertices[i], err = dc.ReadFloat32(); err != nil {
					return msgp.WrapError(err, "Vertices", i)
				}
			}
		case "triangles":
			var sz uint32
			if sz, err = dc.ReadArrayHeader(); err != nil {
				return msgp.WrapError(err, "Triangles")
			}
			z.Triangles = make([]uint32, sz)
			for i := range z.Triangles {
				if z.Triangles[i], err = dc.ReadUint32(); err != nil {
					return msgp.WrapError(err, "Triangles", i)
				}
			}
		case "adjacent":
			var sz uint32
			if sz, err = dc.ReadArrayHeader(); err != nil {
				return msgp.WrapError(err, "Adjacent")
			}
			z.Adjacent = make([]int, sz)
			for i := range z.Adjacent {
				if z.Adjacent[i], err = dc.ReadInt(); err != nil {
					return msgp.WrapError(err, "Adjacent", i)
				}
			}
		default:
			if err = dc.Skip(); err != nil {
				return msgp.WrapError(err)
			}
		}
	}
	return
}
