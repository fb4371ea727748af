package rpc

import "github.com/go-playground/validator/v10"

var structValidator = validator.New()

// Input length caps enforced at the tracker boundary, named after the
// fields they bound so a validation failure message is self-explanatory.
type connectRequest struct {
	Name     string `json:"name" validate:"required,min=5,max=25"`
	Password string `json:"password" validate:"required,min=6,max=50"`
	IP       string `json:"ip" validate:"required"`
	Port     int    `json:"port" validate:"min=0,max=65535"`
}

type resumeRequest struct {
	Token string `json:"token" validate:"required"`
	Name  string `json:"name" validate:"required,min=5,max=25"`
	IP    string `json:"ip" validate:"required"`
	Port  int    `json:"port" validate:"min=0,max=65535"`
}

type tokenNameRequest struct {
	Token string `json:"token" validate:"required"`
	Name  string `json:"name" validate:"required,min=5,max=25"`
}

type registerFileRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required,min=5,max=25"`
	FileName string `json:"file_name" validate:"required,max=100"`
	FileType string `json:"file_type" validate:"required,max=25"`
	FilePath string `json:"file_path" validate:"required,max=300"`
	FileSize int64  `json:"file_size" validate:"min=0"`
}

type deregisterFileRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required,min=5,max=25"`
	FileName string `json:"file_name" validate:"required,max=100"`
	FileType string `json:"file_type" validate:"required,max=25"`
	FilePath string `json:"file_path" validate:"required,max=300"`
}

type searchFileRequest struct {
	Token string `json:"token" validate:"required"`
	Name  string `json:"name" validate:"required,min=5,max=25"`
	Query string `json:"query" validate:"required,max=100"`
}

type hostInfoRequest struct {
	Token  string `json:"token" validate:"required"`
	Name   string `json:"name" validate:"required,min=5,max=25"`
	FileID uint64 `json:"file_id"`
}

// validateRequest runs structValidator against req and returns the single
// human-readable message the RPC boundary surfaces as the ERROR element.
func validateRequest(req any) error {
	return structValidator.Struct(req)
}
