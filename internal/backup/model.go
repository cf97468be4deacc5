package backup

// Version is written into every export and accepted on import.
const Version = "1.0"

// Document is the export file. The three datasets are carried as JSON
// strings holding the stored arrays, so a file written by the browser app
// imports unchanged.
type Document struct {
	Places     string `json:"places"`
	Schedules  string `json:"schedules"`
	Attendance string `json:"attendance"`
	ExportDate string `json:"exportDate"`
	Version    string `json:"version"`
}

// ImportResult reports how many entities each dataset now holds.
type ImportResult struct {
	Places     int `json:"places"`
	Schedules  int `json:"schedules"`
	Attendance int `json:"attendance"`
}
