package txscript

// opEntry pairs an opcode handler with whether it's only available in
// Elements mode (spec.md 4.B "Elements superset"): IF/NOTIF/ELSE/ENDIF are
// special-cased by the engine's own dispatch loop rather than listed here,
// since they alone fork the branch tree instead of running a handler.
type opEntry struct {
	fn       func(*ExecContext) error
	elements bool
}

// opTable maps a token's upper-cased, OP_-stripped name to its handler.
// Populated once at package init; dispatch is a straight map lookup, the
// same O(1)-dispatch-by-name shape the teacher's own opcode table uses
// instead of a giant switch.
var opTable = map[string]opEntry{
	"0NOTEQUAL": {fn: op0NotEqual},
	"1ADD":      {fn: op1Add},
	"1SUB":      {fn: op1Sub},
	"2DROP":     {fn: op2Drop},
	"2DUP":      {fn: op2Dup},
	"2OVER":     {fn: op2Over},
	"2ROT":      {fn: op2Rot},
	"2SWAP":     {fn: op2Swap},
	"3DUP":      {fn: op3Dup},

	"ABS":                 {fn: opAbs},
	"ADD":                 {fn: opAdd},
	"BOOLAND":             {fn: opBoolAnd},
	"BOOLOR":              {fn: opBoolOr},
	"DEPTH":               {fn: opDepth},
	"DROP":                {fn: opDrop},
	"DUP":                 {fn: opDup},
	"EQUAL":               {fn: opEqual},
	"EQUALVERIFY":         {fn: opEqualverify},
	"FROMALTSTACK":        {fn: opFromaltstack},
	"GREATERTHAN":         {fn: opGreaterThan},
	"GREATERTHANOREQUAL":  {fn: opGreaterThanOrEqual},
	"HASH160":             {fn: opHash160},
	"HASH256":             {fn: opHash256},
	"IFDUP":                {fn: opIfdup},
	"LESSTHAN":            {fn: opLessThan},
	"LESSTHANOREQUAL":     {fn: opLessThanOrEqual},
	"MAX":                 {fn: opMax},
	"MIN":                 {fn: opMin},
	"NEGATE":              {fn: opNegate},
	"NIP":                 {fn: opNip},
	"NOT":                 {fn: opNot0},
	"NUMEQUAL":            {fn: opNumEqual},
	"NUMEQUALVERIFY":      {fn: opNumEqualverify},
	"NUMNOTEQUAL":         {fn: opNumNotEqual},
	"OVER":                {fn: opOver},
	"PICK":                {fn: opPick},
	"RIPEMD160":           {fn: opRipemd160},
	"ROLL":                {fn: opRoll},
	"ROT":                 {fn: opRot},
	"SHA1":                {fn: opSha1},
	"SHA256":              {fn: opSha256},
	"SIZE":                {fn: opSize},
	"SUB":                 {fn: opSub},
	"SWAP":                {fn: opSwap},
	"TOALTSTACK":          {fn: opToaltstack},
	"TUCK":                {fn: opTuck},
	"VERIFY":              {fn: opVerify},
	"WITHIN":              {fn: opWithin},

	"CHECKSIG":               {fn: opChecksig},
	"CHECKSIGVERIFY":         {fn: opChecksigverify},
	"CHECKMULTISIG":          {fn: opCheckmultisig},
	"CHECKMULTISIGVERIFY":    {fn: opCheckmultisigverify},
	"CHECKLOCKTIMEVERIFY":    {fn: opChecklocktimeverify},
	"CHECKSEQUENCEVERIFY":    {fn: opChecksequenceverify},

	// Elements bytewise/64-bit/inspection superset.
	"CAT":         {fn: opCat, elements: true},
	"SUBSTR":      {fn: opSplit, elements: true},
	"SUBSTR_LAZY": {fn: opSubstrLazy, elements: true},
	"LEFT":        {fn: opLeft, elements: true},
	"RIGHT":       {fn: opRight, elements: true},
	"INVERT":      {fn: opInvert, elements: true},
	"AND":         {fn: opAnd, elements: true},
	"OR":          {fn: opOr, elements: true},
	"XOR":         {fn: opXor, elements: true},
	"LSHIFT":      {fn: opLshift, elements: true},
	"RSHIFT":      {fn: opRshift, elements: true},

	"ADD64":               {fn: opAdd64, elements: true},
	"SUB64":                {fn: opSub64, elements: true},
	"MUL64":                {fn: opMul64, elements: true},
	"DIV64":                {fn: opDiv64, elements: true},
	"NEG64":                {fn: opNeg64, elements: true},
	"LESSTHAN64":           {fn: opLessThan64, elements: true},
	"LESSTHANOREQUAL64":    {fn: opLessThanOrEqual64, elements: true},
	"GREATERTHAN64":        {fn: opGreaterThan64, elements: true},
	"GREATERTHANOREQUAL64": {fn: opGreaterThanOrEqual64, elements: true},
	"SCRIPTNUMTOLE64":      {fn: opScriptNumToLE64, elements: true},
	"LE64TOSCRIPTNUM":      {fn: opLE64ToScriptNum, elements: true},
	"LE32TOLE64":           {fn: opLE32ToLE64Signed, elements: true},
	"LE32TOLE64U":          {fn: opLE32ToLE64Unsigned, elements: true},

	"SHA256INITIALIZE": {fn: opSha256Initialize, elements: true},
	"SHA256UPDATE":     {fn: opSha256Update, elements: true},
	"SHA256FINALIZE":   {fn: opSha256Finalize, elements: true},

	"ECMULSCALARVERIFY": {fn: opEcmulscalarverify, elements: true},
	"TWEAKVERIFY":       {fn: opTweakverify, elements: true},

	"INSPECTINPUTOUTPOINT":     {fn: opInspectInputOutpointHash, elements: true},
	"INSPECTINPUTOUTPOINTN":    {fn: opInspectInputOutpointN, elements: true},
	"INSPECTINPUTSEQUENCE":     {fn: opInspectInputSequence, elements: true},
	"INSPECTINPUTSCRIPTPUBKEY": {fn: opInspectInputScriptPubkey, elements: true},
	"INSPECTINPUTVALUE":        {fn: opInspectInputValue, elements: true},
	"INSPECTINPUTASSET":        {fn: opInspectInputAsset, elements: true},
	"INSPECTINPUTASSETPREFIX":  {fn: opInspectInputAssetPrefix, elements: true},
	"INSPECTOUTPUTSCRIPTPUBKEY": {fn: opInspectOutputScriptPubkey, elements: true},
	"INSPECTOUTPUTVALUE":       {fn: opInspectOutputValue, elements: true},
	"INSPECTOUTPUTASSET":       {fn: opInspectOutputAsset, elements: true},
	"INSPECTOUTPUTASSETPREFIX": {fn: opInspectOutputAssetPrefix, elements: true},
	"INSPECTVERSION":          {fn: opTxVersion, elements: true},
	"INSPECTLOCKTIME":         {fn: opTxLocktime, elements: true},
	"TXWEIGHT":                {fn: opTxWeight, elements: true},
	"INSPECTNUMINPUTS":        {fn: opInputCount, elements: true},
	"INSPECTNUMOUTPUTS":       {fn: opOutputCount, elements: true},
}

// lookupOp resolves op against the table, rejecting an Elements-only entry
// when the environment isn't running in Elements mode (same "unknown
// opcode, fall through to the plugin" treatment as a truly unrecognized
// name gets).
func lookupOp(env *Environment, op string) (func(*ExecContext) error, bool) {
	e, ok := opTable[op]
	if !ok {
		return nil, false
	}
	if e.elements && !env.Options.Elements {
		return nil, false
	}
	return e.fn, true
}
