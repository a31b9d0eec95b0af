package testutil

// ExchangeGuest returns a minimal WebAssembly module that imports
// message_exchange from hostModule and exports:
//
//	memory                     one page of linear memory
//	allocate(size i32) i32     bump allocator starting at offset 1024
//	run(packed i64) i64        forwards packed to message_exchange
//
// Tests write a request into memory, call run, and read the packed
// response back. Nothing is ever freed.
func ExchangeGuest(hostModule string) []byte {
	const (
		i32  = 0x7f
		i64  = 0x7e
		fn   = 0x60
		kFn  = 0x00
		kMem = 0x02
	)

	types := vec(
		[]byte{fn, 1, i64, 1, i64}, // 0: (i64) -> i64
		[]byte{fn, 1, i32, 1, i32}, // 1: (i32) -> i32
	)
	imports := vec(
		concat(name(hostModule), name("message_exchange"), []byte{kFn, 0}),
	)
	funcs := vec([]byte{1}, []byte{0}) // allocate, run
	memory := vec([]byte{0x00, 1})     // min 1 page, no max
	globals := vec(
		[]byte{i32, 0x01, 0x41, 0x80, 0x08, 0x0b}, // mut i32 = 1024
	)
	exports := vec(
		concat(name("memory"), []byte{kMem, 0}),
		concat(name("allocate"), []byte{kFn, 1}),
		concat(name("run"), []byte{kFn, 2}),
	)
	code := vec(
		body(
			0x23, 0x00, // global.get 0
			0x23, 0x00, // global.get 0
			0x20, 0x00, // local.get 0
			0x6a,       // i32.add
			0x24, 0x00, // global.set 0
		),
		body(
			0x20, 0x00, // local.get 0
			0x10, 0x00, // call 0
		),
	)

	return concat(
		[]byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00},
		section(1, types),
		section(2, imports),
		section(3, funcs),
		section(5, memory),
		section(6, globals),
		section(7, exports),
		section(10, code),
	)
}

func uleb(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func name(s string) []byte {
	return concat(uleb(uint32(len(s))), []byte(s))
}

func vec(items ...[]byte) []byte {
	return concat(uleb(uint32(len(items))), concat(items...))
}

func section(id byte, content []byte) []byte {
	return concat([]byte{id}, uleb(uint32(len(content))), content)
}

// body wraps instructions into a function body with no locals.
func body(instrs ...byte) []byte {
	b := concat([]byte{0x00}, instrs, []byte{0x0b})
	return concat(uleb(uint32(len(b))), b)
}
