package arena

import "github.com/suiarena/arena/pkg/protocol"

// DefaultShotDamage is the health deducted per landed shot.
const DefaultShotDamage = 25

// OutcomeKind classifies a resolved shot.
type OutcomeKind string

const (
	OutcomeHit  OutcomeKind = "hit"
	OutcomeKill OutcomeKind = "kill"
)

// ShotOutcome carries snapshots of both participants taken at resolution
// time, so a broadcast built from it stays stable even if the sessions
// mutate again before the message is sent.
type ShotOutcome struct {
	Kind    OutcomeKind
	Shooter protocol.Player
	Target  protocol.Player
}

// Resolver applies shot state transitions to sessions in a registry. It
// never touches matches and never broadcasts; that is the caller's job.
type Resolver struct {
	registry *Registry
	damage   int
}

// NewResolver creates a resolver. damage <= 0 falls back to
// DefaultShotDamage.
func NewResolver(registry *Registry, damage int) *Resolver {
	if damage <= 0 {
		damage = DefaultShotDamage
	}
	return &Resolver{registry: registry, damage: damage}
}

// ResolveShot deducts damage from the target and classifies the result.
// It returns nil when either session is missing or the target is already
// dead: shooting a corpse or a stale reference is a silent no-op, and
// nothing is mutated.
func (r *Resolver) ResolveShot(shooterID, targetID string) *ShotOutcome {
	shooter := r.registry.Get(shooterID)
	target := r.registry.Get(targetID)

	if shooter == nil || target == nil || !target.Alive {
		return nil
	}

	target.Health -= r.damage
	if target.Health <= 0 {
		target.Health = 0
		target.Alive = false
		target.Deaths++
		shooter.Kills++

		return &ShotOutcome{
			Kind:    OutcomeKill,
			Shooter: shooter.Snapshot(),
			Target:  target.Snapshot(),
		}
	}

	return &ShotOutcome{
		Kind:    OutcomeHit,
		Shooter: shooter.Snapshot(),
		Target:  target.Snapshot(),
	}
}
