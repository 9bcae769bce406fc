package lang_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardnew/xfunc/lang"
)

func ExampleParseString() {
	prog, err := lang.ParseString(context.Background(), `
<arglist>
  <arg type="int" name="n"/>
  <arg name="x"/>
</arglist>
<add arg1="n">
  <mult arg1="x" arg2="2"/>
</add>`)
	if err != nil {
		fmt.Println(err)

		return
	}

	v, err := prog.Eval(lang.Int(3), lang.Float(1.25))
	fmt.Println(v, v.Type(), err)

	// Integer arguments are widened for double parameters.
	v, err = prog.Eval(lang.Int(3), lang.Int(2))
	fmt.Println(v, v.Type(), err)

	_, err = prog.Eval(lang.Float(3), lang.Int(2))
	fmt.Println(errors.Is(err, lang.ErrArgTypeMismatch))

	// Output:
	// 5.5 double <nil>
	// 7.0 double <nil>
	// true
}

func ExampleProgram_EvalName() {
	prog, err := lang.ParseString(context.Background(), `
<arglist><arg type="int" name="a"/><arg type="int" name="b"/></arglist>
<func name="quot"><div arg1="a" arg2="b"/></func>
<func name="rem"><mod arg1="a" arg2="b"/></func>
<func name="ratio"><div arg1="a"><double value="2"/></div></func>`)
	if err != nil {
		fmt.Println(err)

		return
	}

	for fn := range prog.Functions() {
		v, _ := prog.EvalName(fn.Name, lang.Int(-7), lang.Int(2))
		fmt.Printf("%s = %v\n", fn.Signature(), v)
	}

	// Output:
	// quot(int a, int b) = -3
	// rem(int a, int b) = -1
	// ratio(int a, int b) = -3.5
}

func ExampleProgram_Format() {
	prog, err := lang.ParseString(context.Background(),
		`<arglist><arg name="x"/></arglist><sub arg1="x" arg2="1"/>`)
	if err != nil {
		fmt.Println(err)

		return
	}

	_ = prog.Format(context.Background(), os.Stdout, 2)

	// Output:
	// <arglist>
	//   <arg type="double" name="x"/>
	// </arglist>
	// <sub>
	//   <arg name="x"/>
	//   <integer value="1"/>
	// </sub>
}

func ExampleKindOf() {
	for _, src := range []string{
		`<arglist><arg/></arglist><sin></cos>`,
		`<arglist><arg type="long"/></arglist><neg arg="1"/>`,
		`<arglist><arg/></arglist><sub arg1="1"/>`,
	} {
		_, err := lang.ParseString(context.Background(), src)
		fmt.Println(lang.KindOf(err))
	}

	// Output:
	// structure
	// declaration
	// shape
}
