package model

import "fmt"

// Location представляет координаты в игровом мире плюс горизонтальный
// разворот. Value type, передаётся по значению (immutable).
// Pitch всегда нулевой: спавны никогда не смотрят вверх/вниз.
type Location struct {
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	Z   float64 `json:"z" yaml:"z"`
	Yaw float32 `json:"yaw" yaml:"yaw"`
}

// NewLocation создаёт Location с указанными координатами и разворотом.
func NewLocation(x, y, z float64, yaw float32) Location {
	return Location{X: x, Y: y, Z: z, Yaw: yaw}
}

// WithYaw возвращает новый Location с обновлённым разворотом (immutable pattern).
func (l Location) WithYaw(yaw float32) Location {
	l.Yaw = yaw
	return l
}

// WithCoordinates возвращает новый Location с обновлёнными координатами (immutable pattern).
func (l Location) WithCoordinates(x, y, z float64) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (l Location) DistanceSquared(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// CloseTo reports whether the point lies within tol blocks of other on
// every axis. Used to match a click against a stored spawn point.
func (l Location) CloseTo(other Location, tol float64) bool {
	return abs(l.X-other.X) < tol && abs(l.Y-other.Y) < tol && abs(l.Z-other.Z) < tol
}

// String returns a compact human-readable form for log output.
func (l Location) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", l.X, l.Y, l.Z)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
