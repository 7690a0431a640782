package models

// AssetClass categorizes positions by the bucket they occupy in the
// family allocation plan.
type AssetClass string

const (
	AssetClassEquities    AssetClass = "equities"
	AssetClassFixedIncome AssetClass = "fixed_income"
	AssetClassGold        AssetClass = "gold"
	AssetClassCrypto      AssetClass = "crypto"
	AssetClassCash        AssetClass = "cash"
)

// AllAssetClasses returns all valid asset classes for iteration
func AllAssetClasses() []AssetClass {
	return []AssetClass{
		AssetClassEquities,
		AssetClassFixedIncome,
		AssetClassGold,
		AssetClassCrypto,
		AssetClassCash,
	}
}

// DisplayName returns human-readable name for the asset class
func (a AssetClass) DisplayName() string {
	switch a {
	case AssetClassEquities:
		return "Equities"
	case AssetClassFixedIncome:
		return "Fixed Income"
	case AssetClassGold:
		return "Gold"
	case AssetClassCrypto:
		return "Cryptocurrency"
	case AssetClassCash:
		return "Cash"
	default:
		return string(a)
	}
}

// AssetClassStyle holds display attributes for an asset class
type AssetClassStyle struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Emoji string `json:"emoji"`
}

// AssetClassStyles maps each class to the chart color and emoji used by
// the dashboard frontend.
var AssetClassStyles = map[AssetClass]AssetClassStyle{
	AssetClassEquities:    {Name: "Equities", Color: "#3B82F6", Emoji: "📈"},
	AssetClassFixedIncome: {Name: "Fixed Income", Color: "#10B981", Emoji: "🏦"},
	AssetClassGold:        {Name: "Gold", Color: "#F59E0B", Emoji: "🥇"},
	AssetClassCrypto:      {Name: "Cryptocurrency", Color: "#8B5CF6", Emoji: "₿"},
	AssetClassCash:        {Name: "Cash", Color: "#6B7280", Emoji: "💵"},
}

// Style returns the display style for the class, falling back to a
// neutral gray for unknown keys.
func (a AssetClass) Style() AssetClassStyle {
	if s, ok := AssetClassStyles[a]; ok {
		return s
	}
	return AssetClassStyle{Name: string(a), Color: "#6B7280", Emoji: "📊"}
}
