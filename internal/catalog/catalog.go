// Package catalog статический каталог пакетов кредитов.
package catalog

import "sort"

// MinorUnitsFactor во столько раз сумма в шлюзе больше цены пакета.
const MinorUnitsFactor = 100

// Pack пакет кредитов. Price в основных единицах валюты (XOF).
type Pack struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	AmountMinor int64    `json:"amount_minor"`
	Credits     int      `json:"credits"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
	Free        bool     `json:"free"`
}

// Идентификаторы пакетов.
const (
	Mini    = "mini"
	Starter = "starter"
	Pro     = "pro"
)

var packs = map[string]Pack{
	Mini: {
		ID:          Mini,
		Name:        "Mini Pack",
		Description: "Essai gratuit",
		Price:       0,
		Credits:     2,
		Features:    []string{"2 business plans", "Support par email", "Accès à l'historique"},
		Free:        true,
	},
	Starter: {
		ID:          Starter,
		Name:        "Starter Pack",
		Description: "Le plus populaire",
		Price:       5000,
		Credits:     6,
		Features:    []string{"6 business plans", "Support prioritaire", "Accès à l'historique", "Modèles avancés"},
		Popular:     true,
	},
	Pro: {
		ID:          Pro,
		Name:        "Pro Pack",
		Description: "Pour les entrepreneurs actifs",
		Price:       10000,
		Credits:     15,
		Features:    []string{"15 business plans", "Support VIP 24/7", "Accès à l'historique", "Modèles avancés", "Export PDF premium"},
	},
}

// Lookup возвращает пакет по идентификатору.
func Lookup(id string) (Pack, bool) {
	p, ok := packs[id]
	if !ok {
		return Pack{}, false
	}
	p.AmountMinor = p.ExpectedAmount()
	p.Features = append([]string(nil), p.Features...)
	return p, true
}

// All возвращает все пакеты по возрастанию цены.
func All() []Pack {
	out := make([]Pack, 0, len(packs))
	for id := range packs {
		p, _ := Lookup(id)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// ExpectedAmount сумма, которую должен вернуть шлюз, в минимальных единицах.
func (p Pack) ExpectedAmount() int64 {
	return p.Price * MinorUnitsFactor
}
