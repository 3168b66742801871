package library

// Template names shared by the page handlers and the live channel.
const (
	TemplateGrid  = "frag_games_grid"
	TemplateModal = "frag_game_modal"
)

// GridFragment is the template data for the results area. OOB marks an
// out-of-band swap pushed over the live channel.
type GridFragment struct {
	Lang string
	View View
	OOB  bool
}

// ModalFragment is the template data for the detail modal.
type ModalFragment struct {
	Lang  string
	Modal Modal
	OOB   bool
}
