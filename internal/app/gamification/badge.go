package gamification

import "github.com/cocinafacil/tcf/internal/domain"

// Badge ids referenced by engine logic.
const (
	BadgeFirstWeek  = "primera_semana"
	BadgeBalanced   = "equilibrado"
	BadgeSaver      = "ahorrador"
	BadgeEcoChef    = "eco_chef"
	BadgeConsistent = "consistente"
	BadgeMasterChef = "masterchef"
)

// BadgeCatalog returns the fixed badge catalog, all locked. Badges are
// never created or removed at runtime; only UnlockedAt changes.
func BadgeCatalog() []domain.Badge {
	return []domain.Badge{
		{ID: BadgeFirstWeek, Name: "Primera Semana", Description: "Completar tu primera semana", Icon: "📅"},
		{ID: BadgeBalanced, Name: "Equilibrado", Description: "7 días con menú equilibrado", Icon: "⚖️"},
		{ID: BadgeSaver, Name: "Ahorrador", Description: "Menú bajo presupuesto", Icon: "💰"},
		{ID: BadgeEcoChef, Name: "Eco-Chef", Description: "Usar ingredientes de temporada", Icon: "🌱"},
		{ID: BadgeConsistent, Name: "Consistente", Description: "Racha de 30 días", Icon: "🔥"},
		{ID: BadgeMasterChef, Name: "Masterchef", Description: "Llegar a nivel 5", Icon: "👑"},
	}
}
