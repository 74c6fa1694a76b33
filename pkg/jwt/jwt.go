package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCompany el token no trae id_empresa: toda operación de negocio se acota por empresa.
var ErrNoCompany = errors.New("jwt: token sin id_empresa")

// Claims registrados más usuario, empresa y rol; el middleware decide sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"id_usuario"`
	CompanyID string `json:"id_empresa"`
	Role      string `json:"rol"` // Administrador | Vendedor | SuperAdministrador
}

// Generate firma un token HS256 con vigencia de expMinutes.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errors.New("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma, vigencia y empresa; devuelve usuario, empresa y rol.
func Parse(secret, tokenString string) (userID, companyID, role string, err error) {
	if secret == "" {
		return "", "", "", errors.New("jwt: secret vacío")
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", "", fmt.Errorf("jwt: %w", err)
	}
	if claims.CompanyID == "" {
		return "", "", "", ErrNoCompany
	}
	return claims.UserID, claims.CompanyID, claims.Role, nil
}
