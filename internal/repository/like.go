package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutraliza comodines de LIKE en texto provisto por el usuario.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
