package layout

import "math"

// applyLinks pulls linked nodes towards their rest distance. The correction
// is split between both ends by degree so hubs move less.
func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src := &s.bodies[l.source]
		dst := &s.bodies[l.target]

		x := dst.x + dst.vx - src.x - src.vx
		if x == 0 {
			x = s.jiggle()
		}
		y := dst.y + dst.vy - src.y - src.vy
		if y == 0 {
			y = s.jiggle()
		}

		d := math.Sqrt(x*x + y*y)
		f := (d - l.distance) / d * s.alpha * l.strength
		x *= f
		y *= f

		dst.vx -= x * l.bias
		dst.vy -= y * l.bias
		src.vx += x * (1 - l.bias)
		src.vy += y * (1 - l.bias)
	}
}

// applyCharge repels every pair of nodes. The pairwise sum is exact and
// quadratic, which matches the cast sizes the network is built for.
func (s *Simulation) applyCharge() {
	strength := s.cfg.ChargeStrength
	if strength == 0 {
		return
	}
	for i := range s.bodies {
		bi := &s.bodies[i]
		for j := range s.bodies {
			if i == j {
				continue
			}
			bj := &s.bodies[j]

			x := bj.x - bi.x
			y := bj.y - bi.y
			l := x*x + y*y
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < 1 {
				l = math.Sqrt(l)
			}

			w := strength * s.alpha / l
			bi.vx += x * w
			bi.vy += y * w
		}
	}
}

// applyCenter translates all nodes so their mean sits on the viewport
// center.
func (s *Simulation) applyCenter() {
	n := float64(len(s.bodies))
	if n == 0 {
		return
	}
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	cx, cy := s.cfg.Center()
	sx = sx/n - cx
	sy = sy/n - cy
	for i := range s.bodies {
		s.bodies[i].x -= sx
		s.bodies[i].y -= sy
	}
}

// applyCollide pushes overlapping nodes apart, weighting the push by the
// squared radii so small nodes give way to large ones.
func (s *Simulation) applyCollide() {
	strength := s.cfg.CollideStrength
	if strength == 0 {
		return
	}
	for i := range s.bodies {
		bi := &s.bodies[i]
		ri := s.collideRadius(bi)
		ri2 := ri * ri

		for j := i + 1; j < len(s.bodies); j++ {
			bj := &s.bodies[j]
			rj := s.collideRadius(bj)

			x := bi.x + bi.vx - bj.x - bj.vx
			y := bi.y + bi.vy - bj.y - bj.vy
			l := x*x + y*y
			r := ri + rj
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}

			d := math.Sqrt(l)
			f := (r - d) / d * strength
			x *= f
			y *= f

			rj2 := rj * rj
			share := rj2 / (ri2 + rj2)
			bi.vx += x * share
			bi.vy += y * share
			bj.vx -= x * (1 - share)
			bj.vy -= y * (1 - share)
		}
	}
}

func (s *Simulation) collideRadius(b *body) float64 {
	return b.radius*s.radiusScale + s.cfg.CollidePadding
}
