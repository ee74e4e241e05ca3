package textgen

import (
	"fmt"
	"strings"

	"github.com/magabrotheeeer/bizplan/internal/models"
)

const systemPrompt = `Tu es un consultant en création d'entreprise.
Rédige en français un business plan complet et structuré à partir des informations fournies.

Sections attendues, dans cet ordre :
1. **Résumé exécutif**
2. **Vision**
3. **Problème**
4. **Solution**
5. **Public cible**
6. **Analyse de marché**
7. **Modèle économique**
8. **Stratégie marketing**
9. **Plan opérationnel**
10. **Prévisions financières sur 3 ans**

Reste factuel, n'invente pas de données que l'utilisateur n'a pas données.
Mets les titres de sections en **gras**.`

// userPrompt собирает описание проекта из полей формы.
func userPrompt(d models.BusinessData) string {
	var b strings.Builder
	b.WriteString("Informations sur le projet :\n\n")
	fields := []struct{ label, value string }{
		{"Nom du projet", d.ProjectName},
		{"Secteur d'activité", d.Sector},
		{"Problème à résoudre", d.Problem},
		{"Solution proposée", d.Solution},
		{"Public cible", d.TargetAudience},
		{"Modèle économique", d.BusinessModel},
		{"Ressources nécessaires", d.Resources},
		{"Stratégie marketing", d.MarketingStrategy},
		{"Vision et objectifs", d.Vision},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			v = "non précisé"
		}
		fmt.Fprintf(&b, "**%s :** %s\n", f.label, v)
	}
	return b.String()
}
