package core

// Category catalogs of the original deployment. These are
// configuration data: the config layer may replace them wholesale,
// the engine only ever checks membership.

// DefaultExpenseCategories is the closed catalog of expense categories.
var DefaultExpenseCategories = []string{
	"Abastecimiento y alimentacion",
	"Ahorro e inversiones",
	"Asuntos familiares y responsabilidad social",
	"Contingencias y gastos miscelaneos",
	"Educacion y formacion",
	"Financiera y gestion de deudas",
	"Gestion de gastos laborales",
	"Infraestructura y servicios del hogar",
	"Negocios y desarrollo empresarial",
	"Recreacion y entretenimiento",
	"Salud y bienestar",
	"Transporte y movilidad",
	"Vestuario y presentacion personal",
}

// DefaultIncomeCategories is the closed catalog of income categories.
var DefaultIncomeCategories = []string{
	"Sueldo Deiner",
	"Sueldo Sole",
	"Negocios",
	"Ariadna Babyshop",
	"Otros ingresos",
	"Prestamos",
}

// Catalog holds the category lists offered for each transaction kind.
// Membership is advisory on record (unknown categories are stored as
// given) and exact on analysis filtering.
type Catalog struct {
	Expense []string
	Income  []string
}

// DefaultCatalog returns the built-in category catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Expense: append([]string(nil), DefaultExpenseCategories...),
		Income:  append([]string(nil), DefaultIncomeCategories...),
	}
}

// ForKind returns the category list for the given kind.
func (c Catalog) ForKind(k Kind) []string {
	if k == Expense {
		return c.Expense
	}
	return c.Income
}

// Contains reports whether name is a known category of either kind.
func (c Catalog) Contains(name string) bool {
	for _, s := range c.Expense {
		if s == name {
			return true
		}
	}
	for _, s := range c.Income {
		if s == name {
			return true
		}
	}
	return false
}
