package ports

// TextCoder converts between bytes and text for the encodings the bridge
// supports.
type TextCoder interface {
	DecodeUTF8(data []byte) (string, error)
	EncodeUTF8(s string) []byte
	EncodeBase64(data []byte) string
	DecodeBase64(s string) ([]byte, error)
}
