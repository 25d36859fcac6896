package network

// Tier buckets a connection by its weight.
type Tier string

const (
	TierStrong Tier = "strong"
	TierMedium Tier = "medium"
	TierWeak   Tier = "weak"
)

// TierFor returns the tier of a connection with the given weight. Weights
// below one never occur on a real edge and fall into the weak tier.
func TierFor(weight int) Tier {
	switch {
	case weight >= 3:
		return TierStrong
	case weight == 2:
		return TierMedium
	default:
		return TierWeak
	}
}

// Tiers partitions the neighbors of a character.
type Tiers struct {
	Strong []Connection `json:"strong"`
	Medium []Connection `json:"medium"`
	Weak   []Connection `json:"weak"`
}

// Len returns the number of connections across all tiers.
func (t Tiers) Len() int {
	return len(t.Strong) + len(t.Medium) + len(t.Weak)
}

// Partition splits the neighbors of name into tiers. Every neighbor lands in
// exactly one tier and keeps the Neighbors order.
func (n *Network) Partition(name string) Tiers {
	var t Tiers
	for _, c := range n.Neighbors(name) {
		switch TierFor(c.Weight) {
		case TierStrong:
			t.Strong = append(t.Strong, c)
		case TierMedium:
			t.Medium = append(t.Medium, c)
		default:
			t.Weak = append(t.Weak, c)
		}
	}
	return t
}
