package cid_test

import (
	"fmt"

	"github.com/hyphacoop/go-dagcbor/cid"
)

func Example() {
	mh, err := cid.SumSha256([]byte("hello dasl"))
	if err != nil {
		panic(err)
	}
	c := cid.NewV1(cid.CodecDagCbor, mh)

	// Round-trip through the textual form.
	c2, err := cid.Decode(c.String())
	if err != nil {
		panic(err)
	}
	fmt.Println(c.Equals(c2))

	// Round-trip through the binary form.
	c3, err := cid.DecodeBytes(c.Bytes())
	if err != nil {
		panic(err)
	}
	fmt.Println(c.Equals(c3))

	info, err := c.Info()
	if err != nil {
		panic(err)
	}
	fmt.Printf("version=%d codec=0x%x hash-code=0x%x hash-size=%d\n",
		info.Version, info.Codec, info.Hash.Code, info.Hash.Size)
	// Output:
	// true
	// true
	// version=1 codec=0x71 hash-code=0x12 hash-size=32
}
