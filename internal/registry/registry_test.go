package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const beansXML = `<?xml version="1.0" encoding="UTF-8"?>
<beans xmlns="http://www.springframework.org/schema/beans"
       xmlns:context="http://www.springframework.org/schema/context"
       xmlns:util="http://www.springframework.org/schema/util">

    <context:component-scan base-package="com.example.web"/>
    <context:property-placeholder location="classpath:app.properties"/>
    <import resource="security.xml"/>

    <bean id="dataSource" class="org.apache.commons.dbcp.BasicDataSource" destroy-method="close">
        <property name="driverClassName" value="org.h2.Driver"/>
        <property name="url">
            <value>jdbc:h2:mem:test</value>
        </property>
        <property name="pool" ref="pool"/>
    </bean>
    <bean name="pool,connectionPool" class="com.example.Pool"/>
    <bean class="com.example.Anonymous"/>
    <alias name="dataSource" alias="ds"/>

    <util:list id="hosts">
        <value>a.example.com</value>
        <value>b.example.com</value>
    </util:list>
    <util:map id="limits">
        <entry key="read" value="10"/>
        <entry key="write"><value>2</value></entry>
    </util:map>
    <util:properties id="defaults">
        <prop key="timeout">30</prop>
    </util:properties>

    <beans profile="dev">
        <bean id="devOnly" class="com.example.Dev"/>
    </beans>
    <mvc:annotation-driven xmlns:mvc="http://www.springframework.org/schema/mvc"/>
</beans>
`

func load(t *testing.T) *Registry {
	t.Helper()
	r, err := Load(strings.NewReader(beansXML))
	require.NoError(t, err)
	return r
}

func TestLoad_Classifies(t *testing.T) {
	r := load(t)

	got := map[string]Type{}
	for _, d := range r.Definitions() {
		got[d.Name] = d.Type
	}
	assert.Equal(t, map[string]Type{
		"com.example.web":          ComponentScan,
		"classpath:app.properties": PropertyPlaceholder,
		"security.xml":             Import,
		"dataSource":               Bean,
		"pool":                     Bean,
		"com.example.Anonymous#5":  Bean,
		"ds":                       Alias,
		"hosts":                    List,
		"limits":                   Map,
		"defaults":                 Properties,
		"devOnly":                  Bean,
		"annotation-driven#11":     Unknown,
	}, got)
}

func TestDefinitionsByType(t *testing.T) {
	r := load(t)

	beans := r.DefinitionsByType(Bean)
	assert.Len(t, beans, 4)
	assert.Contains(t, beans, "dataSource")
	assert.Contains(t, beans, "devOnly")

	assert.Empty(t, r.DefinitionsByType(Type(200)))

	// the returned map is a copy
	delete(beans, "dataSource")
	assert.Contains(t, r.DefinitionsByType(Bean), "dataSource")
}

func TestDefinition(t *testing.T) {
	r := load(t)

	ds, err := r.Definition("dataSource")
	require.NoError(t, err)
	assert.Equal(t, "bean", ds.Element)
	assert.Equal(t, "org.apache.commons.dbcp.BasicDataSource", ds.Attributes["class"])
	assert.Equal(t, "close", ds.Attributes["destroy-method"])

	viaAlias, err := r.Definition("ds")
	require.NoError(t, err)
	assert.Same(t, ds, viaAlias)

	_, err = r.Definition("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsPropertyEqualTo(t *testing.T) {
	r := load(t)

	ds, err := r.Definition("dataSource")
	require.NoError(t, err)
	assert.True(t, ds.IsPropertyEqualTo("driverClassName", "org.h2.Driver"))
	assert.True(t, ds.IsPropertyEqualTo("url", "jdbc:h2:mem:test"))
	assert.True(t, ds.IsPropertyEqualTo("pool", "pool"))
	assert.False(t, ds.IsPropertyEqualTo("url", "jdbc:h2:mem:prod"))
	assert.False(t, ds.IsPropertyEqualTo("missing", ""))

	limits, err := r.Definition("limits")
	require.NoError(t, err)
	assert.True(t, limits.IsPropertyEqualTo("read", "10"))
	assert.True(t, limits.IsPropertyEqualTo("write", "2"))

	hosts, err := r.Definition("hosts")
	require.NoError(t, err)
	assert.True(t, hosts.IsPropertyEqualTo("1", "b.example.com"))

	defaults, err := r.Definition("defaults")
	require.NoError(t, err)
	assert.True(t, defaults.IsPropertyEqualTo("timeout", "30"))
}

func TestLoad_LaterDefinitionOverrides(t *testing.T) {
	r, err := Load(strings.NewReader(`<beans>
  <bean id="a" class="First"/>
  <bean id="a" class="Second"/>
</beans>`))
	require.NoError(t, err)

	d, err := r.Definition("a")
	require.NoError(t, err)
	assert.Equal(t, "Second", d.Attributes["class"])
	assert.Len(t, r.Definitions(), 2)
	assert.Len(t, r.DefinitionsByType(Bean), 1)
	assert.Equal(t, []string{"a"}, r.Names())
}

func TestLoad_OverrideChangesType(t *testing.T) {
	r, err := Load(strings.NewReader(`<beans xmlns:util="http://www.springframework.org/schema/util">
  <bean id="hosts" class="com.example.Hosts"/>
  <util:list id="hosts"><value>a</value></util:list>
</beans>`))
	require.NoError(t, err)
	assert.Empty(t, r.DefinitionsByType(Bean))
	assert.Contains(t, r.DefinitionsByType(List), "hosts")
}

func TestLoad_AliasCycle(t *testing.T) {
	r, err := Load(strings.NewReader(`<beans>
  <alias name="b" alias="a"/>
  <alias name="a" alias="b"/>
</beans>`))
	require.NoError(t, err)
	d, err := r.Definition("a")
	require.NoError(t, err)
	assert.Equal(t, Alias, d.Type)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(strings.NewReader(`<beans><bean id="a">`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beans.xml")
	require.NoError(t, os.WriteFile(path, []byte(beansXML), 0o644))
	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, r.DefinitionsByType(Alias), 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	r := load(t)

	got, err := r.Select("$[?(@.type == 'bean')].name")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"dataSource", "pool", "com.example.Anonymous#5", "devOnly"}, got)

	got, err = r.Select("$[?(@.name == 'dataSource')].properties.url")
	require.NoError(t, err)
	assert.Equal(t, []any{"jdbc:h2:mem:test"}, got)

	_, err = r.Select("$[?(")
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Unknown, Bean, Alias, Import, List, Map, Properties, ComponentScan, PropertyPlaceholder} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	got, err := ParseType("Component-Scan")
	require.NoError(t, err)
	assert.Equal(t, ComponentScan, got)

	_, err = ParseType("widget")
	assert.Error(t, err)
}
