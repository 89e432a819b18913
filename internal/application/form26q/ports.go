package form26q

// XMLExporter serializa el reporte y devuelve el digest SHA-256 (hex) de su forma canónica.
type XMLExporter interface {
	Build(r *Report) ([]byte, string, error)
}

// PDFExporter genera el PDF del reporte.
type PDFExporter interface {
	Generate(r *Report) ([]byte, error)
}

// File archivo generado pendiente de guardar.
type File struct {
	Name string
	Data []byte
}

// FileStorage guarda un lote de archivos y devuelve sus ubicaciones en el mismo orden.
// Si SaveAll falla no queda ningún archivo del lote.
type FileStorage interface {
	SaveAll(files ...File) ([]string, error)
}
