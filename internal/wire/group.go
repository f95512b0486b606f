package wire

// maxGroupLen is the hard cap on a packet group's total serialized
// length. A push that would meet or exceed this bound is rejected.
const maxGroupLen = 0x8000

// PacketGroup batches several packets so they can be sent as one
// zlib-compressed envelope instead of individually.
type PacketGroup struct {
	packets []*Packet
	length  int
}

// Push appends p to the group unless doing so would bring the group's
// total serialized length to maxGroupLen or beyond, in which case p is
// returned to the caller unchanged and the group is left untouched.
func (g *PacketGroup) Push(p *Packet) (*Packet, error) {
	n, err := p.SerializeLen()
	if err != nil {
		return nil, err
	}
	if g.length+n >= maxGroupLen {
		return p, nil
	}
	g.packets = append(g.packets, p)
	g.length += n
	return nil, nil
}

func (g *PacketGroup) SerializeLen() int { return g.length }

func (g *PacketGroup) Packets() []*Packet { return g.packets }

func (g *PacketGroup) Empty() bool { return len(g.packets) == 0 }

// Serialize concatenates every packet's wire form in push order.
func (g *PacketGroup) Serialize() ([]byte, error) {
	out := make([]byte, 0, g.length)
	for _, p := range g.packets {
		enc, err := p.Serialize()
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}
