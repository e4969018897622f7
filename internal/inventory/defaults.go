package inventory

// DefaultCategories are persisted the first time the engine starts on an
// empty categories collection.
var DefaultCategories = []string{
	"Süt & Kahvaltılık",
	"Et & Şarküteri",
	"Meyve & Sebze",
	"İçecekler",
	"Bakliyat & Makarna",
	"Atıştırmalık",
	"Temizlik",
	"Kişisel Bakım",
	"Diğer",
}

// LogProjectionCap bounds the in-memory log list after each append. The
// logs collection itself is never trimmed.
const LogProjectionCap = 100
