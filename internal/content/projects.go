package content

// Raw sub-keys read from project and profile sections.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyImage       = "imagem"
	KeyColab       = "colab"
	KeyPhoto       = "minha_foto"
)

// ProfileSection is the reserved section holding the profile record.
const ProfileSection = "EU"

// CatalogEntry ties a content section to its public slug and tag list.
type CatalogEntry struct {
	Section string
	Slug    string
	Tags    []string
}

// Catalog is the allow-list of project sections, in display order. Sections
// missing from it never become projects.
var Catalog = []CatalogEntry{
	{Section: "Painel_Estoque_por_lote", Slug: "painel-estoque-por-lote", Tags: []string{"Power BI", "Estoque", "Análise de Dados"}},
	{Section: "Painel_Vendas_Tempo_Real", Slug: "painel-vendas-tempo-real", Tags: []string{"Power BI", "Vendas", "Tempo Real"}},
	{Section: "Painel_Logistica", Slug: "painel-logistica", Tags: []string{"Power BI", "Logística", "Eficiência"}},
	{Section: "Painel_Cesta_de_Compras", Slug: "painel-cesta-de-compras", Tags: []string{"Power BI", "Apriori", "Machine Learning"}},
	{Section: "Teste_AB_CTR_Pagina_Inicial", Slug: "teste-ab-ctr-home", Tags: []string{"Experimentação", "A/B Test", "Estatística", "CUPED", "Bayes"}},
	{Section: "Pipeline_ETL_Produtos", Slug: "etl-pipeline-produtos", Tags: []string{"Python", "ETL", "Levenshtein", "Qualidade Cadastral"}},
}

// Project is a displayable project derived from a catalog section.
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImagePath   string   `json:"imagePath"`
	ColabURL    string   `json:"colabUrl,omitempty"`
	Tags        []string `json:"tags"`
}

// Profile is the owner's profile record.
type Profile struct {
	PhotoPath string `json:"photoPath"`
}

// ExtractProjects returns one Project per catalog section present in doc,
// always in catalog order.
func ExtractProjects(doc *Document) []Project {
	projects := make([]Project, 0, len(Catalog))
	for _, entry := range Catalog {
		sec, ok := doc.Section(entry.Section)
		if !ok {
			continue
		}
		projects = append(projects, newProject(entry, sec))
	}
	return projects
}

func newProject(entry CatalogEntry, sec *Section) Project {
	p := Project{
		ID:   entry.Slug,
		Tags: append([]string(nil), entry.Tags...),
	}
	p.Title, _ = sec.Get(KeyTitle)
	p.Description, _ = sec.Get(KeyDescription)
	p.ImagePath, _ = sec.Get(KeyImage)
	p.ColabURL, _ = sec.Get(KeyColab)
	return p
}

// ExtractProfile returns the profile record, or nil when the profile section
// is absent.
func ExtractProfile(doc *Document) *Profile {
	sec, ok := doc.Section(ProfileSection)
	if !ok {
		return nil
	}
	p := &Profile{}
	p.PhotoPath, _ = sec.Get(KeyPhoto)
	return p
}

// FindProject returns the project with the given slug.
func FindProject(projects []Project, id string) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// LookupSlug returns the catalog entry for a public slug.
func LookupSlug(slug string) (CatalogEntry, bool) {
	for _, entry := range Catalog {
		if entry.Slug == slug {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}
