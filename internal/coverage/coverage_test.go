package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const cartSuite = `public class CartTest {
    // Shopping cart checkout flow
    @Test
    void addsItemToCart() {
        driver.findElement(By.id("add")).click();
    }

    @Test
    void removesItem() {
        assertEquals("Cart is empty", driver.findElement(By.id("msg")).getText());
    }
}`

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"shopping", "cart", "checkout"}, Keywords("The shopping-cart checkout, for the user"))
	assert.Equal(t, []string{"oauth2", "login"}, Keywords("OAuth2 login login"))
	assert.Empty(t, Keywords("a to of"))
}

func TestSplitCamel(t *testing.T) {
	assert.Equal(t, []string{"adds", "item", "to", "cart"}, splitCamel("addsItemToCart"))
	assert.Equal(t, []string{"http", "server", "start"}, splitCamel("HTTPServer_start"))
	assert.Equal(t, []string{"step", "2", "done"}, splitCamel("step2Done"))
}

func TestCheck(t *testing.T) {
	t.Run("should match names, literals and comments", func(t *testing.T) {
		res := Check(cartSuite, "Shopping cart checkout", DefaultThreshold)
		assert.Equal(t, []string{"shopping", "cart", "checkout"}, res.Matched)
		assert.Empty(t, res.Missing)
		assert.Equal(t, 1.0, res.Coverage)
		assert.True(t, res.Covered)
		assert.Equal(t, []string{"addsItemToCart"}, res.Methods)
	})

	t.Run("should fall short of the threshold", func(t *testing.T) {
		res := Check(cartSuite, "cart coupon discount", DefaultThreshold)
		assert.Equal(t, []string{"cart"}, res.Matched)
		assert.Equal(t, []string{"coupon", "discount"}, res.Missing)
		assert.InDelta(t, 1.0/3.0, res.Coverage, 1e-9)
		assert.False(t, res.Covered)
	})

	t.Run("should not count identifiers in code", func(t *testing.T) {
		res := Check(cartSuite, "driver", DefaultThreshold)
		assert.Equal(t, []string{"driver"}, res.Missing)
	})

	t.Run("should need at least one test method", func(t *testing.T) {
		res := Check("// cart\nclass X {}", "cart", 0.5)
		assert.Equal(t, 1.0, res.Coverage)
		assert.False(t, res.Covered)
		assert.Equal(t, "no test methods found", res.Reason)
	})

	t.Run("should explain an unusable feature name", func(t *testing.T) {
		res := Check(cartSuite, "it", 0.5)
		assert.False(t, res.Covered)
		assert.NotNil(t, res.Keywords)
		assert.Equal(t, "feature name has no usable keywords", res.Reason)
	})
}
