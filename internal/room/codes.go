package room

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/choeurtis18/MortPion/internal/apperr"
)

// HashCode hashes a private room's access code with bcrypt, the same way
// the teacher's auth/session.go hashes account passwords
// (bcrypt.GenerateFromPassword). This resolves spec §9 Open Question 3:
// private-room codes are hashed at rest and compared in constant time.
// Exported so the Dispatcher can hash a create-room request's code before
// handing it to the Lobby Registry.
func HashCode(code string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Newf(apperr.Internal, "hash access code: %v", err)
	}
	return hash, nil
}

// verifyCode compares a candidate code against the stored bcrypt hash.
// bcrypt.CompareHashAndPassword runs in constant time with respect to the
// candidate, satisfying the "hash and compare in constant time" guidance
// the rules document gives for adversarial environments.
func verifyCode(hash []byte, candidate string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(candidate)) == nil
}
