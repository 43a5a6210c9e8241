package utils

// LevelName maps a reputation balance to a traveler level.
func LevelName(points int) string {
	switch {
	case points >= 1000:
		return "captain"
	case points >= 201:
		return "navigator"
	case points >= 51:
		return "pathfinder"
	case points >= 11:
		return "wanderer"
	default:
		return "deckhand"
	}
}
