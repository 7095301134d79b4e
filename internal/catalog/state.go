package catalog

import (
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/notify"
	"strings"
	"unicode/utf8"
)

// Mode is the view the workflow is currently showing
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeLoading  Mode = "loading"
	ModeList     Mode = "list"
	ModeError    Mode = "error"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

// ColumnCount is the number of columns of the product table. The empty
// placeholder row spans all of them.
const ColumnCount = 5

// Texts shown by the dashboard
const (
	TitleList   = "All Products"
	TitleCreate = "Crear Producto"
	TitleEdit   = "Editar Producto"

	SubmitCreateLabel = "Crear Producto"
	SubmitEditLabel   = "Actualizar Producto"
	SubmittingLabel   = "Creando..."

	UploadImageLabel = "Subir Imagen"
	ChangeImageLabel = "Cambiar Imagen"

	EmptyPlaceholder   = "No hay productos."
	LoadErrorFallback  = "Error al cargar productos"
	DeleteConfirmTitle = "¿Eliminar producto?"
	DeleteConfirmBody  = "Esta acción no se puede deshacer. El producto será eliminado permanentemente."

	MsgCreated       = "Producto creado exitosamente"
	MsgCreateFailed  = "Error al crear producto: "
	MsgUpdated       = "Producto actualizado"
	MsgUpdateFailed  = "Error al actualizar: "
	MsgDeleted       = "Producto eliminado"
	MsgDeleteFailed  = "Error al eliminar: "
	MsgUploadFailed  = "Error al subir imagen: "
	PromptName       = "Nuevo nombre:"
	PromptPrice      = "Nuevo precio:"
	PromptStock      = "Nuevo stock:"
	imageLabelLength = 20
)

// Row is a product as rendered in the list
type Row struct {
	domain.Product
	PriceLabel string            `json:"price_label"`
	StockLevel domain.StockLevel `json:"stock_level"`
}

// Snapshot is a copy of the workflow state taken for rendering
type Snapshot struct {
	Mode          Mode          `json:"mode"`
	Title         string        `json:"title"`
	Rows          []Row         `json:"rows"`
	Empty         bool          `json:"empty"`
	ColumnCount   int           `json:"column_count"`
	Error         string        `json:"error,omitempty"`
	Draft         *domain.Draft `json:"draft,omitempty"`
	EditingID     int           `json:"editing_id,omitempty"`
	SubmitLabel   string        `json:"submit_label,omitempty"`
	ImageLabel    string        `json:"image_label,omitempty"`
	ImageAction   string        `json:"image_action,omitempty"`
	PendingDelete *int          `json:"pending_delete,omitempty"`
	Toast         *notify.Toast `json:"toast,omitempty"`
}

// Products returns the domain records of the rows
func (s Snapshot) Products() []domain.Product {
	ps := make([]domain.Product, len(s.Rows))
	for i, r := range s.Rows {
		ps[i] = r.Product
	}
	return ps
}

// ImageLabel is the preview shown next to the upload button: the first 20
// characters of the last path segment followed by an ellipsis.
func ImageLabel(url string) string {
	if url == "" {
		return ""
	}
	name := url[strings.LastIndex(url, "/")+1:]
	if utf8.RuneCountInString(name) > imageLabelLength {
		name = string([]rune(name)[:imageLabelLength])
	}
	return name + "..."
}
