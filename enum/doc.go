// Package enum maps portable enumeration mnemonics to the integer
// values the native library expects. Lookups can be gated on the
// loaded ImageMagick release so a mnemonic the linked build does not
// know yet fails loudly instead of passing a wrong constant.
package enum
