package sim

import (
	"time"

	"salvo/server/internal/archetype"
	"salvo/server/internal/projectile"
	"salvo/server/internal/vecmath"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandFire       CommandType = "Fire"
	CommandReload     CommandType = "Reload"
	CommandUnregister CommandType = "Unregister"
)

// FireCommand spawns one projectile of an archetype.
type FireCommand struct {
	Archetype archetype.ID `json:"archetype"`
	Origin    vecmath.Vec3 `json:"origin"`
	Velocity  vecmath.Vec3 `json:"velocity"`
	Damage    float64      `json:"damage"`
	Lifetime  float64      `json:"lifetime"`
}

// ReloadCommand notifies every archetype compiled for a weapon of a reload.
type ReloadCommand struct {
	WeaponID string `json:"weaponId"`
}

// UnregisterCommand removes a projectile between ticks.
type UnregisterCommand struct {
	Entity projectile.EntityID `json:"entity"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	// Source identifies the issuer for per-source throttling.
	Source     string             `json:"source"`
	Type       CommandType        `json:"type"`
	IssuedAt   time.Time          `json:"issuedAt"`
	Fire       *FireCommand       `json:"fire,omitempty"`
	Reload     *ReloadCommand     `json:"reload,omitempty"`
	Unregister *UnregisterCommand `json:"unregister,omitempty"`
}
