// Package savefile reads and writes the line-oriented save format used to
// persist games.
//
// A save file is plain text. Optional KEY=VALUE metadata lines come first,
// followed by the game records:
//
//	# property-game save
//	SESSION=ab12
//	RULES=classic
//	BANK=198400
//	ORDER=1,0,2
//	POINTER=0
//	PLAYER|Ana|3740|12|0|0|0|0
//	PROP|1|0|2|0
//	CARD|pay|100|17
//
// PLAYER fields are name, balance, position, in jail, bankrupt, release
// cards and color. PROP fields are position, owner (-1 when unowned), houses
// and hotel. CARD fields are kind, value and display id. Flags are written as
// 0 or 1.
//
// Blank lines and lines starting with # are skipped, as are records with an
// unknown prefix. Missing trailing fields take their zero defaults; a field
// that is present but not a number fails the load with the line number.
package savefile
