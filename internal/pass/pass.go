// Package pass issues seat passes: an AES encrypted token describing a
// booking, rendered as a QR code that the front desk scans to verify.
package pass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-seating/internal/models"
)

// ErrInvalidToken is returned for tokens that do not decrypt to a pass.
var ErrInvalidToken = errors.New("invalid pass token")

// Pass is the payload sealed inside a token.
type Pass struct {
	BookingID  string    `json:"bookingId"`
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName"`
	SeatNumber int       `json:"seatNumber"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	DaysOfWeek []int     `json:"daysOfWeek"`
	IssuedAt   time.Time `json:"issuedAt"`
}

// Booking rebuilds the schedule fields so the recurrence rules can be
// applied to a scanned pass.
func (p Pass) Booking() models.Booking {
	return models.Booking{
		ID:         p.BookingID,
		MemberID:   p.MemberID,
		MemberName: p.MemberName,
		SeatNumber: p.SeatNumber,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		DaysOfWeek: p.DaysOfWeek,
	}
}

type Generator struct {
	secret []byte
	Now    func() time.Time
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:], Now: time.Now}
}

// Token seals b into a URL-safe string.
func (g *Generator) Token(b models.Booking) (string, error) {
	p := Pass{
		BookingID:  b.ID,
		MemberID:   b.MemberID,
		MemberName: b.MemberName,
		SeatNumber: b.SeatNumber,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		DaysOfWeek: b.DaysOfWeek,
		IssuedAt:   g.Now().UTC(),
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return encryptAES(data, g.secret)
}

// QR renders the token of b as a 256px PNG.
func (g *Generator) QR(b models.Booking) ([]byte, error) {
	token, err := g.Token(b)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, 256)
}

// Decode opens a token produced by Token with the same secret.
func (g *Generator) Decode(token string) (*Pass, error) {
	data, err := decryptAES(token, g.secret)
	if err != nil {
		return nil, err
	}
	var p Pass
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if p.BookingID == "" {
		return nil, ErrInvalidToken
	}
	return &p, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(token string, key []byte) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(ciphertext) <= aes.BlockSize {
		return nil, ErrInvalidToken
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv, body := ciphertext[:aes.BlockSize], ciphertext[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(plain, body)
	return plain, nil
}
