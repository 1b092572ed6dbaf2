package app

import "marker-bot/internal/domain/entity"

// CalculateOrientations считает угол каждого найденного маркера.
// Ключи результата совпадают с ключами markers, пустой вход даёт пустую карту.
func CalculateOrientations(markers entity.Markers) entity.Angles {
	angles := make(entity.Angles, len(markers))
	for id, corners := range markers {
		angles[id] = corners.Orientation()
	}
	return angles
}
