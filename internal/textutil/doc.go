// Package textutil holds small string helpers shared by packages that turn
// script titles and catalogue names into file names.
package textutil
