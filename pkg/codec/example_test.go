package codec_test

import (
	"fmt"

	"github.com/matzehuels/objgraph/pkg/codec"
	"github.com/matzehuels/objgraph/pkg/object"
)

func ExampleSerializer_Marshal() {
	s := codec.New()

	a := object.New()
	a.Set("name", "a")
	a.Set("self", a)

	data, err := s.Marshal(a)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(data))
	// Output: [[[{"name":["a"],"self":[[0]]}]],[0]]
}

func ExampleSerializer_Register() {
	s := codec.New()
	animal := object.New()
	if err := s.Register("Animal", animal, nil); err != nil {
		fmt.Println(err)
		return
	}

	dog := object.NewWithPrototype(animal)
	dog.Set("legs", 4)

	data, _ := s.Marshal(object.NewArray(dog, dog))
	fmt.Println(string(data))

	v, _ := s.Unmarshal(data)
	arr := v.(*object.Array)
	fmt.Println(arr.At(0) == arr.At(1), arr.At(0).(*object.Object).Prototype() == animal)
	// Output:
	// [[[[[1],[1]],["_Array"]],[{"legs":[4]},["Animal"]]],[0]]
	// true true
}
