package planet

type Planet struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Moon        int    `json:"moon"`
}

// Input carries the mutable fields of a planet; create and update both require all of them
type Input struct {
	Name        string
	Description string
	Moon        int
}

// ListParams holds the raw query string values accepted by the list endpoint
type ListParams struct {
	Description string
	Moon        string
	MoonParam   string
	Sort        string
}
